package db

// APITokenModel mirrors the api_token table: a short display prefix and
// the keyed hash used for lookups. The raw token never lands here.
type APITokenModel struct {
	ID     int64  `gorm:"primaryKey"`
	Prefix string `gorm:"size:8;not null"`
	Hash   string `gorm:"uniqueIndex;not null"`
}

func (APITokenModel) TableName() string { return "api_token" }
