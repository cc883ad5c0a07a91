package entity

// AssetRecord maps a checker-assigned asset id to the content address the
// pinning gateway returned for it. A record exists only for assets that
// were successfully pinned; remapping an id is last-write-wins.
type AssetRecord struct {
	AssetID        string `json:"imgId"`
	ContentAddress string `json:"cid"`
}
