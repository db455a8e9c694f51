/*
Package binrec converts structured records to a compact binary layout and back.

The layout carries no header, no type tag and no version: both sides must agree on the
schema of the records they exchange. Every field is encoded in declaration order, using
the codec of its wire type. All multi-byte values are little-endian.

Wire types

Wire types are described by Type values, built with the exported variables and
constructors or parsed from their textual form:

	int8 int16 int32 (int) int64 (long)
	float16 (half) float32 (float) float64 (double)
	bool char varchar string fixedstring[N]
	array[T,N] vector[T] null ignore
	Person (a record defined earlier)

Records

A record schema is an ordered list of fields. It is defined once, then records can be
built and parsed:

	person, err := binrec.Define("Person",
		binrec.NewField("name", binrec.Varchar),
		binrec.NewField("age", binrec.Int8),
		binrec.NewField("id", binrec.Int64),
	)

	rec, err := person.New(map[string]any{"name": "Bob", "age": 25, "id": 69696969})
	data, err := rec.Build()
	// data: 03 42 6f 62 19 c9 7d 27 04 00 00 00 00

	rec, err = person.Parse(data)

Schemas can also be loaded from a JSON schema file with LoadSchema.

Storage

Encoded records can be stored in a Pebble database, see Open.

Errors

Errors are usage errors (invalid values or declarations), lookup errors (wire types
without codec) or decoding errors (malformed or truncated input). Use IsUsageError,
IsLookupError and IsDecodingError to tell them apart.
*/
package binrec
