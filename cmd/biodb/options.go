package main

import (
	"sync"

	"github.com/safing/biodb/api"
	"github.com/safing/biodb/config"
	"github.com/safing/biodb/info"
	"github.com/safing/biodb/ncbi"
	"github.com/safing/biodb/pdb"
	"github.com/safing/biodb/rfam"
	"github.com/safing/biodb/rna3dhub"
)

// Config Keys.
const (
	CfgLogLevelKey        = "core/logLevel"
	CfgUserAgentKey       = "core/userAgent"
	CfgStorageTypeKey     = "storage/type"
	CfgRfamVersionKey     = "rfam/version"
	CfgRfamUseWebsiteKey  = "rfam/useWebsite"
	CfgRfamWebsiteURLKey  = "rfam/websiteURL"
	CfgRfamMirrorsKey     = "rfam/mirrors"
	CfgNCBIEUtilsURLKey   = "ncbi/eutilsURL"
	CfgNCBIFTPHostKey     = "ncbi/ftpHost"
	CfgPDBDownloadURLKey  = "pdb/downloadURL"
	CfgPDBSearchURLKey    = "pdb/searchURL"
	CfgRNA3DHubReleaseKey = "rna3dhub/release"
	CfgRNA3DHubBaseURLKey = "rna3dhub/baseURL"
	CfgAPIListenKey       = "api/listen"
)

const urlRegex = `^https?://[^\s]+$`

var (
	cfgLogLevel        config.StringOption
	cfgUserAgent       config.StringOption
	cfgStorageType     config.StringOption
	cfgRfamVersion     config.StringOption
	cfgRfamUseWebsite  config.BoolOption
	cfgRfamWebsiteURL  config.StringOption
	cfgRfamMirrors     config.StringArrayOption
	cfgNCBIEUtilsURL   config.StringOption
	cfgNCBIFTPHost     config.StringOption
	cfgPDBDownloadURL  config.StringOption
	cfgPDBSearchURL    config.StringOption
	cfgRNA3DHubRelease config.StringOption
	cfgRNA3DHubBaseURL config.StringOption
	cfgAPIListen       config.StringOption

	registerOnce sync.Once
	registerErr  error
)

func registerOptions() error {
	registerOnce.Do(func() {
		registerErr = registerAll()
	})
	return registerErr
}

func registerAll() error {
	options := []*config.Option{
		{
			Name:            "Log Level",
			Key:             CfgLogLevelKey,
			Description:     "Log level of the program. Overridden by the --log flag.",
			OptType:         config.OptTypeString,
			DefaultValue:    "info",
			ValidationRegex: "^(trace|debug|info|warning|error|critical)$",
		},
		{
			Name:         "User Agent",
			Key:          CfgUserAgentKey,
			Description:  "User agent sent with every request.",
			OptType:      config.OptTypeString,
			DefaultValue: info.UserAgent(),
		},
		{
			Name:            "Storage Type",
			Key:             CfgStorageTypeKey,
			Description:     "Backend of the record store: fstree, bbolt, badger or hashmap.",
			OptType:         config.OptTypeString,
			DefaultValue:    "fstree",
			ValidationRegex: "^(fstree|bbolt|badger|hashmap)$",
		},
		{
			Name:            "Rfam Release",
			Key:             CfgRfamVersionKey,
			Description:     "Rfam release to download, eg. 14.10, or CURRENT.",
			OptType:         config.OptTypeString,
			DefaultValue:    rfam.CurrentVersion,
			ValidationRegex: `^(CURRENT|[0-9]+(\.[0-9]+)*)$`,
		},
		{
			Name:         "Use Rfam Website",
			Key:          CfgRfamUseWebsiteKey,
			Description:  "Request alignments from the Rfam website instead of the local store.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
		},
		{
			Name:            "Rfam Website",
			Key:             CfgRfamWebsiteURLKey,
			Description:     "Base URL of the Rfam website.",
			OptType:         config.OptTypeString,
			DefaultValue:    rfam.DefaultWebsiteURL,
			ValidationRegex: urlRegex,
		},
		{
			Name:            "Rfam Mirrors",
			Key:             CfgRfamMirrorsKey,
			Description:     "Base URLs of the Rfam file server, tried in order.",
			OptType:         config.OptTypeStringArray,
			DefaultValue:    []string{rfam.DefaultMirror},
			ValidationRegex: urlRegex,
		},
		{
			Name:            "NCBI E-utilities",
			Key:             CfgNCBIEUtilsURLKey,
			Description:     "Base URL of the NCBI E-utilities.",
			OptType:         config.OptTypeString,
			DefaultValue:    ncbi.DefaultEUtilsURL,
			ValidationRegex: urlRegex,
		},
		{
			Name:         "NCBI FTP Host",
			Key:          CfgNCBIFTPHostKey,
			Description:  "Host of the NCBI FTP server.",
			OptType:      config.OptTypeString,
			DefaultValue: ncbi.DefaultFTPHost,
		},
		{
			Name:            "PDB Download",
			Key:             CfgPDBDownloadURLKey,
			Description:     "Base URL for PDB entry downloads.",
			OptType:         config.OptTypeString,
			DefaultValue:    pdb.DefaultDownloadURL,
			ValidationRegex: urlRegex,
		},
		{
			Name:            "PDB Search",
			Key:             CfgPDBSearchURLKey,
			Description:     "URL of the PDB advanced search.",
			OptType:         config.OptTypeString,
			DefaultValue:    pdb.DefaultSearchURL,
			ValidationRegex: urlRegex,
		},
		{
			Name:         "RNA 3D Hub Release",
			Key:          CfgRNA3DHubReleaseKey,
			Description:  "Release of the non-redundant lists.",
			OptType:      config.OptTypeString,
			DefaultValue: rna3dhub.DefaultRelease,
		},
		{
			Name:            "RNA 3D Hub",
			Key:             CfgRNA3DHubBaseURLKey,
			Description:     "Base URL of the non-redundant list downloads.",
			OptType:         config.OptTypeString,
			DefaultValue:    rna3dhub.DefaultBaseURL,
			ValidationRegex: urlRegex,
		},
		{
			Name:            "API Address",
			Key:             CfgAPIListenKey,
			Description:     "Defines the IP address and port for the API.",
			OptType:         config.OptTypeString,
			DefaultValue:    api.DefaultListenAddress,
			ValidationRegex: "^([0-9]{1,3}.[0-9]{1,3}.[0-9]{1,3}.[0-9]{1,3}:[0-9]{1,5}|\\[[:0-9A-Fa-f]+\\]:[0-9]{1,5})$",
		},
	}
	for _, option := range options {
		if err := config.Register(option); err != nil {
			return err
		}
	}

	cfgLogLevel = config.GetAsString(CfgLogLevelKey, "info")
	cfgUserAgent = config.GetAsString(CfgUserAgentKey, info.UserAgent())
	cfgStorageType = config.GetAsString(CfgStorageTypeKey, "fstree")
	cfgRfamVersion = config.GetAsString(CfgRfamVersionKey, rfam.CurrentVersion)
	cfgRfamUseWebsite = config.GetAsBool(CfgRfamUseWebsiteKey, false)
	cfgRfamWebsiteURL = config.GetAsString(CfgRfamWebsiteURLKey, rfam.DefaultWebsiteURL)
	cfgRfamMirrors = config.GetAsStringArray(CfgRfamMirrorsKey, []string{rfam.DefaultMirror})
	cfgNCBIEUtilsURL = config.GetAsString(CfgNCBIEUtilsURLKey, ncbi.DefaultEUtilsURL)
	cfgNCBIFTPHost = config.GetAsString(CfgNCBIFTPHostKey, ncbi.DefaultFTPHost)
	cfgPDBDownloadURL = config.GetAsString(CfgPDBDownloadURLKey, pdb.DefaultDownloadURL)
	cfgPDBSearchURL = config.GetAsString(CfgPDBSearchURLKey, pdb.DefaultSearchURL)
	cfgRNA3DHubRelease = config.GetAsString(CfgRNA3DHubReleaseKey, rna3dhub.DefaultRelease)
	cfgRNA3DHubBaseURL = config.GetAsString(CfgRNA3DHubBaseURLKey, rna3dhub.DefaultBaseURL)
	cfgAPIListen = config.GetAsString(CfgAPIListenKey, api.DefaultListenAddress)
	return nil
}
