package store

import "time"

const (
	StatusActive      = "active"
	StatusUninstalled = "uninstalled"
)

// Store is an installed BigCommerce store and the token the app was granted.
type Store struct {
	ID          int64
	Hash        string
	AccessToken string
	Scope       string
	OwnerEmail  string
	Status      string
	InstalledAt time.Time
}
