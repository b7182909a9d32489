package main

import (
	"github.com/safing/biodb/fetch"
	"github.com/safing/biodb/log"
	"github.com/safing/biodb/ncbi"
	"github.com/safing/biodb/pdb"
	"github.com/safing/biodb/rfam"
	"github.com/safing/biodb/rna3dhub"
	"github.com/safing/biodb/storage"
)

func cacheDir(name string) string {
	dir := dataRoot.ChildDir("cache", 0o755).ChildDir(name, 0o755)
	if err := dir.Ensure(); err != nil {
		log.Warningf("main: failed to create cache directory %s: %s", dir.Path, err)
	}
	return dir.Path
}

func newFetcher(name string) *fetch.HTTPFetcher {
	return fetch.NewHTTPFetcher(name, cfgUserAgent())
}

// newRfamClient returns a client with an open store. The store must be shut
// down by the caller.
func newRfamClient() (*rfam.Client, storage.Interface, error) {
	version := cfgRfamVersion()
	if err := rfam.ValidateVersion(version); err != nil {
		return nil, nil, err
	}

	store, err := storage.Open("rfam", cfgStorageType(), dataRoot.ChildDir("rfam", 0o755).Path)
	if err != nil {
		return nil, nil, err
	}

	c := rfam.NewClient(newFetcher("rfam"), store, cacheDir("rfam"))
	c.Version = version
	c.UseWebsite = cfgRfamUseWebsite()
	c.WebsiteURL = cfgRfamWebsiteURL()
	c.Mirrors = cfgRfamMirrors()
	return c, store, nil
}

func newPDBClient() *pdb.Client {
	c := pdb.NewClient(newFetcher("pdb"))
	c.DownloadURL = cfgPDBDownloadURL()
	c.SearchURL = cfgPDBSearchURL()
	return c
}

func newNCBIClient() *ncbi.Client {
	c := ncbi.NewClient(newFetcher("ncbi"), cacheDir("ncbi"))
	c.EUtilsURL = cfgNCBIEUtilsURL()
	c.FTPHost = cfgNCBIFTPHost()
	return c
}

func newRNA3DHubClient() *rna3dhub.Client {
	c := rna3dhub.NewClient(newFetcher("rna3dhub"))
	c.Release = cfgRNA3DHubRelease()
	c.BaseURL = cfgRNA3DHubBaseURL()
	return c
}
