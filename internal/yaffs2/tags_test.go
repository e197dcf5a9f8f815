package yaffs2

import "testing"

func TestTagClassification(t *testing.T) {
	cases := []struct {
		name   string
		tag    tag
		header bool
		erased bool
		data   bool
	}{
		{"header", tag{ObjectID: 5, ChunkID: 0, ByteCount: tagByteCountHeader}, true, false, false},
		{"erased", tag{ByteCount: tagByteCountErased}, false, true, false},
		{"first data chunk", tag{ObjectID: 5, ChunkID: 1, ByteCount: 100}, false, false, true},
		{"later data chunk", tag{ObjectID: 5, ChunkID: 7, ByteCount: 2048}, false, false, true},
		{"chunk 0 but not header byte count", tag{ObjectID: 5, ChunkID: 0, ByteCount: 10}, false, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.tag.isHeader(); got != c.header {
				t.Errorf("isHeader() = %v, want %v", got, c.header)
			}
			if got := c.tag.isErased(); got != c.erased {
				t.Errorf("isErased() = %v, want %v", got, c.erased)
			}
			if got := c.tag.isData(); got != c.data {
				t.Errorf("isData() = %v, want %v", got, c.data)
			}
		})
	}
}

func TestParseTagRoundTrip(t *testing.T) {
	want := tag{SequenceNumber: 0xdeadbeef, ObjectID: 42, ChunkID: 3, ByteCount: 1024}
	got := parseTag(encodeTag(want))
	if got != want {
		t.Errorf("parseTag(encodeTag(t)) = %+v, want %+v", got, want)
	}
}
