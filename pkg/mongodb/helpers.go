package mongodb

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GenerateIDString generates a new MongoDB ObjectID as a string
func GenerateIDString() string {
	return primitive.NewObjectID().Hex()
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}

// BuildUpdate builds a BSON $set update document
func BuildUpdate(set bson.M) bson.M {
	return bson.M{"$set": set}
}

// BuildUpdateWithTimestamp builds a BSON update document with automatic updatedAt
func BuildUpdateWithTimestamp(set bson.M) bson.M {
	set["updatedAt"] = Now()
	return bson.M{"$set": set}
}

// BuildIncrementUpdate builds a BSON increment update
func BuildIncrementUpdate(fields bson.M) bson.M {
	return bson.M{
		"$inc": fields,
		"$set": bson.M{"updatedAt": Now()},
	}
}

// SortAscending creates an ascending sort option
func SortAscending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

// SortDescending creates a descending sort option
func SortDescending(field string) bson.D {
	return bson.D{{Key: field, Value: -1}}
}

// IsThrottleError reports whether a write failed because the server pushed back
// and the operation is worth retrying. Covers write-concern timeouts and the
// retryable server error labels.
func IsThrottleError(err error) bool {
	if err == nil {
		return false
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		if we.HasErrorLabel("RetryableWriteError") {
			return true
		}
		if we.WriteConcernError != nil {
			return true
		}
		for _, e := range we.WriteErrors {
			// 50: ExceededTimeLimit, 91: ShutdownInProgress, 189: PrimarySteppedDown
			if e.Code == 50 || e.Code == 91 || e.Code == 189 {
				return true
			}
		}
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.HasErrorLabel("RetryableWriteError") || ce.Code == 50
	}

	return false
}

// ChunkStrings splits a string slice into chunks of at most size elements
func ChunkStrings(values []string, size int) [][]string {
	if size <= 0 || len(values) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
