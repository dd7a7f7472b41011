package utils

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/stockflow/inventory_backend/config"
)

var sequenceMutex sync.Mutex

func GetTypeName[T any]() string {
	var v T
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

const sequenceMaxAttempts = 5
const sequenceRetryDelay = 50 * time.Millisecond

// GetSequence allocates the next human-readable sequence number for T
// under the business. The counter lives in redis when available and is
// seeded from MAX(sequence_no) in the database; each candidate is
// re-checked against the table so a stale counter cannot hand out a
// taken number. "Number already taken" is transient: retried up to
// sequenceMaxAttempts with a short delay, then ErrorSequenceExhausted.
func GetSequence[T any](ctx context.Context, businessId string) (int64, error) {
	var model T

	sequenceMutex.Lock()
	defer sequenceMutex.Unlock()

	cacheKey := businessId + "-" + strings.ToLower(GetTypeName[T]()) + "_seq"
	db := config.GetDB()

	for attempt := 0; attempt < sequenceMaxAttempts; attempt++ {
		seqNo, err := config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		// counter missing or redis unavailable: seed from db
		if seqNo <= 1 {
			var dbSeq *int64
			if err := db.WithContext(ctx).Model(&model).Select("max(sequence_no)").
				Where("business_id = ?", businessId).
				Scan(&dbSeq).Error; err != nil {
				return 0, err
			}
			seqNo = 1
			if dbSeq != nil {
				seqNo = *dbSeq + 1
			}
			if err := config.SetRedisCounter(ctx, cacheKey, seqNo); err != nil {
				return 0, err
			}
		}
		// check the candidate is still free
		if err := ValidateUnique[T](ctx, businessId, "sequence_no", seqNo, 0); err == nil {
			return seqNo, nil
		}
		time.Sleep(sequenceRetryDelay)
	}
	return 0, ErrorSequenceExhausted
}
