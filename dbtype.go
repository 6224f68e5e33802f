package declorm

// DBType is the abstract column type assigned to a field. The string values
// are the wire names used in the serialized model representation and must
// stay stable for migration diffing.
type DBType string

const (
	// DBInvalid is the unresolved sentinel. It never appears on a derived
	// field; resolving to it fails the build.
	DBInvalid DBType = ""

	DBVarChar   DBType = "varchar"
	DBVarBinary DBType = "varbinary"

	DBInt8  DBType = "int8"
	DBInt16 DBType = "int16"
	DBInt32 DBType = "int32"
	DBInt64 DBType = "int64"

	DBUInt8  DBType = "uint8"
	DBUInt16 DBType = "uint16"
	DBUInt32 DBType = "uint32"
	DBUInt64 DBType = "uint64"

	DBFloat  DBType = "float"
	DBDouble DBType = "double"

	DBBoolean DBType = "boolean"

	DBDate      DBType = "date"
	DBDateTime  DBType = "datetime"
	DBTimestamp DBType = "timestamp"
	DBTime      DBType = "time"

	DBChoices DBType = "choices"
	DBSet     DBType = "set"
)

// Enum is implemented by string-backed types whose set of valid values is
// closed. Fields of such a type infer to DBChoices and automatically carry a
// choices annotation listing every member.
type Enum interface {
	Choices() []string
}

// FlagSet is implemented by bitset types whose bits map onto a closed set of
// names. Fields of such a type infer to DBSet.
type FlagSet interface {
	FlagChoices() []string
}
