package models

// Content is static reference data: the catalog of activity types a
// session can be recorded against. Seeded once at startup.
type Content struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

// ContentTypes is the fixed catalog seeded into the content table.
var ContentTypes = []string{
	"Castles",
	"Crystal League",
	"Open World",
	"HG 5v5",
	"Avalon",
	"Scrims",
}
