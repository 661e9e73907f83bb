package entity

// SyncState is a point-in-time view of the synchronization bookkeeping
type SyncState struct {
	BaseCurrencyCode string `json:"base_currency_code"`
	LastSyncedAt     *int64 `json:"last_synced_at,omitempty"`
	UpdatedAt        string `json:"updated_at"`
	IsLoading        bool   `json:"is_loading"`
	InFlight         bool   `json:"in_flight"`
	LastError        string `json:"last_error,omitempty"`
	LastPersistError string `json:"last_persist_error,omitempty"`
	Count            int    `json:"count"`
}
