package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a citizen's login session.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// QuestionPoolKey returns the cache key for the cached question pool of
// a language ("all" when unfiltered).
func (r *CacheKeyStruct) QuestionPoolKey(language string) string {
	if language == "" {
		language = "all"
	}
	return fmt.Sprintf("questions:pool:%s", language)
}

var CacheKey = NewCacheKeyStruct()
