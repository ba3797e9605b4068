// Package id generates 16-byte identifiers that sort by creation time.
//
// An ID is [8 bytes unix ms][8 bytes sequence], big-endian, so byte order,
// hex order and creation order agree. A Generator never goes backwards: on
// clock regression it stays on the last millisecond and bumps the sequence.
//
// namer.Unique renders IDs as hex to name segment files:
//
//	g := id.NewGenerator()
//	name := fmt.Sprintf("segment-%s.log", g.Next())
//	parsed, _ := id.ParseHex(g.Next().String())
//	_ = parsed.Time()
package id
