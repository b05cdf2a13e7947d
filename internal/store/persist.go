package store

// CatalogSource supplies the application catalog written on save.
type CatalogSource interface {
	ToPersistableRecords() []Record
}

// Persist saves the store together with the catalog's records.
func Persist(s *Store, catalog CatalogSource) error {
	var records []Record
	if catalog != nil {
		records = catalog.ToPersistableRecords()
	}
	return s.Save(records)
}
