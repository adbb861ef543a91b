// internal/models/usage.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerationUsage records one generation attempt.
type GenerationUsage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Operation   string             `bson:"operation" json:"operation"`
	ContentType string             `bson:"content_type,omitempty" json:"content_type,omitempty"`
	Method      string             `bson:"method,omitempty" json:"method,omitempty"`
	Format      string             `bson:"format,omitempty" json:"format,omitempty"`
	CacheHit    bool               `bson:"cache_hit" json:"cache_hit"`
	Success     bool               `bson:"success" json:"success"`
	ErrorMsg    string             `bson:"error_msg,omitempty" json:"error_msg,omitempty"`
	RequestID   string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	IPAddress   string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent   string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	ProcessTime int64              `bson:"process_time_ms" json:"process_time_ms"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// UsageStats aggregates usage by one dimension (method, format or content type).
type UsageStats struct {
	Key          string `bson:"_id" json:"key"`
	TotalCalls   int    `bson:"total_calls" json:"total_calls"`
	SuccessCalls int    `bson:"success_calls" json:"success_calls"`
	FailedCalls  int    `bson:"failed_calls" json:"failed_calls"`
	CacheHits    int    `bson:"cache_hits" json:"cache_hits"`
}

// UserUsageSummary is the per-user view returned by /me/usage.
type UserUsageSummary struct {
	UserID        string       `json:"user_id"`
	TotalCalls    int          `json:"total_calls"`
	ByMethod      []UsageStats `json:"by_method"`
	ByFormat      []UsageStats `json:"by_format"`
	ByContentType []UsageStats `json:"by_content_type"`
}

// UsageTrackingRequest for recording usage
type UsageTrackingRequest struct {
	UserID      string
	Operation   string
	ContentType string
	Method      string
	Format      string
	CacheHit    bool
	Success     bool
	ErrorMsg    string
	RequestID   string
	IPAddress   string
	UserAgent   string
	ProcessTime int64
}
