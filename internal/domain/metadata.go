package domain

// CreateMarketRequest is a metadata submission made before the creator sends
// the on-chain transaction.
type CreateMarketRequest struct {
	Question        string   `json:"question"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	ImageIPFSHash   *string  `json:"image_ipfs_hash"`
	ImageURL        *string  `json:"image_url"`
	Tags            []string `json:"tags"`
	SourceURL       *string  `json:"source_url"`
	ResolutionRules string   `json:"resolution_rules"`
}

// PendingMetadata is a submitted metadata record that has not been joined to
// an on-chain market.
type PendingMetadata struct {
	MetadataID      string   `json:"metadata_id"`
	Question        string   `json:"question"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	ImageURL        string   `json:"image_url"`
	Tags            []string `json:"tags"`
	SourceURL       *string  `json:"source_url"`
	ResolutionRules string   `json:"resolution_rules"`
	CreatedAt       float64  `json:"created_at"`
}

// CreateMarketResponse is returned after a metadata submission.
type CreateMarketResponse struct {
	MetadataID string `json:"metadata_id"`
	IPFSURI    string `json:"ipfs_uri"`
}
