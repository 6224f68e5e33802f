package declorm

import (
	"time"

	j "github.com/goccy/go-json"
)

// ID is the type to use for most models' primary key:
//
//	type User struct {
//	    ID declorm.ID
//	    ...
//	}
//
// A field of this type implies the primary_key and autoincrement
// annotations. Models without any primary-key field instead get an implicit
// "id" column that has no backing Go field.
type ID int64

// Date is a calendar date without a time component. It maps to the date
// column type, while a plain time.Time maps to datetime.
type Date struct {
	time.Time
}

// Time is a time of day without a date component. It maps to the time column
// type.
type Time struct {
	time.Time
}

// JSON stores an arbitrary value serialized as JSON in a varbinary column.
type JSON[T any] struct {
	V T
}

// jsonField marks JSON[T] for type inference across instantiations.
type jsonField interface{ jsonFieldMarker() }

func (JSON[T]) jsonFieldMarker() {}

// MarshalJSON encodes the wrapped value.
func (v JSON[T]) MarshalJSON() ([]byte, error) { return j.Marshal(v.V) }

// UnmarshalJSON decodes into the wrapped value.
func (v *JSON[T]) UnmarshalJSON(data []byte) error { return j.Unmarshal(data, &v.V) }
