package incident

import "time"

// createdAtLayout is the fixed display format for incident timestamps.
const createdAtLayout = "2006/01/02 15:04:05"

var tokyo = loadTokyo()

func loadTokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		// Asia/Tokyo has no DST, so a fixed offset is equivalent when
		// the zone database is unavailable.
		return time.FixedZone("Asia/Tokyo", 9*60*60)
	}
	return loc
}

// FormatCreatedAt renders t in Asia/Tokyo as yyyy/MM/dd HH:mm:ss.
func FormatCreatedAt(t time.Time) string {
	return t.In(tokyo).Format(createdAtLayout)
}
