package config

const (
	// MaxTitleLength is the maximum length for document titles.
	MaxTitleLength = 200

	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxDisplayNameLength bounds profile display names.
	MaxDisplayNameLength = 100

	// MaxValidateIDs caps how many ids one validate request may carry.
	MaxValidateIDs = 500
)
