package lode

import (
	"errors"
	"fmt"
	"strings"
)

// Artifact storage failure kinds. Match with errors.Is.
var (
	// ErrDenied covers missing or rejected credentials and refused access
	// (EACCES, 401, 403, AccessDenied).
	ErrDenied = errors.New("storage access denied")
	// ErrNotFound is a missing bucket, prefix or file (ENOENT, 404, NoSuchKey).
	ErrNotFound = errors.New("storage target not found")
	// ErrNoSpace is a full disk or exhausted quota.
	ErrNoSpace = errors.New("storage full")
	// ErrTimeout is a deadline hit while talking to storage.
	ErrTimeout = errors.New("storage timed out")
	// ErrThrottled is backend rate limiting (429, SlowDown).
	ErrThrottled = errors.New("storage throttled")
	// ErrNetwork is a connection-level failure.
	ErrNetwork = errors.New("storage unreachable")
	// ErrUnclassified is the kind of every failure no pattern matches.
	ErrUnclassified = errors.New("storage error")
)

// Storage operations recorded on a StorageError.
const (
	OpOpen   = "open"   // dataset or store creation
	OpPut    = "put"    // screenshot, video or report upload
	OpAppend = "append" // captured-error or summary records
	OpQuery  = "query"  // snapshot reads by inspect and stats
)

// StorageError is a classified artifact storage failure. The underlying
// error stays in the chain for errors.As.
type StorageError struct {
	Kind   error
	Op     string
	Target string // artifact path or dataset
	Err    error
}

func (e *StorageError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Target, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches the classification sentinel.
func (e *StorageError) Is(target error) bool { return e.Kind == target }

// wrap classifies err for op on target. A nil err stays nil.
func wrap(op, target string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: kindOf(err), Op: op, Target: target, Err: err}
}

// Transient reports whether retrying the operation later may succeed.
// Run artifacts are uploaded once, so callers only log this.
func Transient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrThrottled) || errors.Is(err, ErrNetwork)
}

// kindPatterns is checked in order, case-insensitively; first match wins.
var kindPatterns = []struct {
	kind     error
	patterns []string
}{
	{ErrDenied, []string{
		"AccessDenied", "Forbidden", "403", "permission denied", "EACCES",
		"NoCredentialProviders", "InvalidAccessKeyId", "SignatureDoesNotMatch",
		"ExpiredToken", "401", "Unauthorized",
	}},
	{ErrNotFound, []string{"no such file", "does not exist", "not found", "ENOENT", "404", "NoSuchKey", "NoSuchBucket"}},
	{ErrNoSpace, []string{"no space left", "disk full", "ENOSPC", "quota exceeded"}},
	{ErrTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ErrThrottled, []string{"SlowDown", "rate exceeded", "throttl", "429", "TooManyRequests"}},
	{ErrNetwork, []string{"connection refused", "connection reset", "no route to host", "network unreachable", "no such host", "dial tcp"}},
}

// kindOf maps err to a sentinel. Typed timeouts win over message patterns.
func kindOf(err error) error {
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return ErrTimeout
	}
	msg := strings.ToLower(err.Error())
	for _, p := range kindPatterns {
		for _, pat := range p.patterns {
			if strings.Contains(msg, strings.ToLower(pat)) {
				return p.kind
			}
		}
	}
	return ErrUnclassified
}
