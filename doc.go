// Package savevault persists typed values to local files under string keys.
//
// A Store turns each value into bytes with one of the codecs in pkg/codec,
// optionally encrypts them, writes a salted hash next to the record and
// keeps older copies as backups. Every Store method contains failures:
// saves that fail are logged, loads that fail return the caller's default,
// and a record whose hash does not match is treated as absent.
//
//	s, err := savevault.NewFromConfig(config.Default())
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	s.Save("score", int32(42))
//	score := savevault.LoadFrom(s, "score", int32(0))
//
// Values are limited to a closed set of shapes: booleans, 32 and 64 bit
// integers and floats, strings, codec.Vector3, codec.Quaternion, sequences,
// mappings and records. A record lists its own fields:
//
//	type Profile struct {
//		Name  string
//		Level int32
//	}
//
//	func (p *Profile) Fields() []codec.Field {
//		return []codec.Field{
//			{Name: "name", Ptr: &p.Name},
//			{Name: "level", Ptr: &p.Level},
//		}
//	}
//
// Fields are matched by name, so adding or removing a field keeps older
// records readable.
//
// The package-level functions use a process-wide Store configured from
// config.Global(), which reads config.yaml in the user configuration
// directory.
//
// Auto-save keeps a set of registered pointers and saves their current
// values at the configured interval:
//
//	savevault.RegisterAutoSave("player", &player)
package savevault
