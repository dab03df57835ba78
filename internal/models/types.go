package models

// Provider identifies which S3-compatible backend serves a request
type Provider string

const (
	ProviderR2 Provider = "r2"
	ProviderDO Provider = "do"
)

// AssetRole classifies a storage object by what it contributes to the catalog
type AssetRole string

const (
	RoleVideo        AssetRole = "video"
	RoleSubtitle     AssetRole = "subtitle"
	RolePoster       AssetRole = "poster"
	RoleUnrecognized AssetRole = "unrecognized"
)
