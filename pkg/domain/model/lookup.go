package model

// LookupList is a named list of records addressed by item ID, used by lookup rules
type LookupList struct {
	Name  string
	Items map[string]map[string]any
}
