package entity

import "strings"

// Data is the presentation-facing view of an item's record.
type Data struct {
	Name              string
	Extension         string
	Path              string
	IsDir             bool
	Hidden            bool
	Size              uint64
	ThumbnailKey      []string
	HasLocalThumbnail bool
}

// FullName joins name and extension the way the explorer displays them.
func (d Data) FullName() string {
	if d.Extension == "" || d.IsDir {
		return d.Name
	}
	return d.Name + "." + d.Extension
}

// DataOf reads the display fields out of the item's live record.
// It is recomputed on every call, so record updates show up immediately.
func DataOf(item Item) Data {
	rec := item.Record()
	d := Data{}
	d.Name, _ = rec["name"].(string)
	d.Extension, _ = rec["extension"].(string)
	d.IsDir, _ = rec["is_dir"].(bool)
	d.Hidden, _ = rec["hidden"].(bool)
	d.ThumbnailKey, d.HasLocalThumbnail = item.Thumbnail()

	switch item.Kind() {
	case KindNonIndexedPath, KindLocation:
		d.Path, _ = rec["path"].(string)
	default:
		d.Path, _ = rec["materialized_path"].(string)
		if d.Path != "" {
			d.Path = strings.TrimRight(d.Path, "/") + "/" + d.FullName()
		}
	}

	if b, ok := PubID(rec["size_in_bytes_bytes"]); ok {
		d.Size = bigEndian(b)
	} else if n, ok := toInt(rec["size_in_bytes"]); ok && n > 0 {
		d.Size = uint64(n)
	}

	if d.Name == "" && item.Kind() == KindNonIndexedPath {
		d.Name = lastElem(d.Path)
	}
	return d
}

func bigEndian(b []byte) uint64 {
	var n uint64
	for _, x := range b {
		n = n<<8 | uint64(x)
	}
	return n
}

func lastElem(p string) string {
	p = strings.TrimRight(p, "/\\")
	if i := strings.LastIndexAny(p, "/\\"); i >= 0 {
		return p[i+1:]
	}
	return p
}
