package requests

// TenantSyncConfig is both the stored shape of a tenant's synchronization
// configuration and the admin PUT request body.
type TenantSyncConfig struct {
	TenantID      string           `json:"tenant_id" bson:"tenant_id" validate:"required"`
	Vendor        string           `json:"vendor" bson:"vendor" validate:"required,oneof=cerner epic"`
	BaseURL       string           `json:"base_url" bson:"base_url" validate:"required,url"`
	TokenURL      string           `json:"token_url" bson:"token_url" validate:"required,url"`
	TargetBaseURL string           `json:"target_base_url" bson:"target_base_url" validate:"required,url"`
	SystemApp     *TenantVendorApp `json:"system_app" bson:"system_app" validate:"required"`
	ProviderApp   *TenantVendorApp `json:"provider_app,omitempty" bson:"provider_app,omitempty"`
}

// TenantVendorApp carries the credentials for one registered vendor app.
// Cerner uses ClientID+ClientSecret (Basic client credentials); Epic uses
// ClientID+PrivateKeyPEM+KeyID (signed JWT client assertion).
type TenantVendorApp struct {
	ClientID      string `json:"client_id" bson:"client_id" validate:"required"`
	ClientSecret  string `json:"client_secret,omitempty" bson:"client_secret,omitempty"`
	PrivateKeyPEM string `json:"private_key_pem,omitempty" bson:"private_key_pem,omitempty"`
	KeyID         string `json:"key_id,omitempty" bson:"key_id,omitempty"`
	Scopes        string `json:"scopes,omitempty" bson:"scopes,omitempty"`
}
