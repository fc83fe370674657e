package kvdb

// Buckets used by the service. Every bucket is created when the database is opened.
const (
	BucketTools    = "tools"
	BucketPrompts  = "prompts"
	BucketRequests = "requests"
)

var buckets = []string{BucketTools, BucketPrompts, BucketRequests}

type DB interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Update(bucket string, key string, modify func(current string) (string, error)) error
	Delete(bucket string, key string) error
	GetAll(bucket string) (map[string]string, error)
	Close() error
}
