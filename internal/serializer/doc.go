// Package serializer turns records into single output lines for the page
// writer. Every serializer returns exactly one line terminated by "\n".
//
//	s, err := serializer.ByName("json")
//	line, err := s.Serialize(map[string]any{"k": 1}) // {"k":1}\n
package serializer
