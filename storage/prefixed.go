package storage

import "strings"

// Prefixed is a view of a storage that places all keys below a prefix and
// appends an extension, eg. "seed/" + accession + ".sto".
type Prefixed struct {
	DB        Interface
	Prefix    string
	Extension string
}

// Key returns the full storage key of id.
func (p *Prefixed) Key(id string) string {
	return p.Prefix + id + p.Extension
}

// Get returns the content stored for id.
func (p *Prefixed) Get(id string) ([]byte, error) {
	return p.DB.Get(p.Key(id))
}

// Store persists content under id, replacing previous content.
func (p *Prefixed) Store(id string, content []byte) error {
	return p.DB.Put(p.Key(id), content)
}

// Location returns the location of id within the storage.
func (p *Prefixed) Location(id string) string {
	return p.DB.Location(p.Key(id))
}

// IDs returns all stored ids in ascending order.
func (p *Prefixed) IDs() ([]string, error) {
	keys, err := p.DB.Keys(p.Prefix)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, p.Extension) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(key, p.Prefix), p.Extension)
		if id == "" || strings.Contains(id, "/") {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Clear deletes all stored ids and returns how many were removed.
func (p *Prefixed) Clear() (int, error) {
	ids, err := p.IDs()
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := p.DB.Delete(p.Key(id)); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
