package dump

import "strings"

// ExtractIdentifier finds the trailing `` `name` `` in a marker line by
// locating the last pair of backticks — mysqldump always quotes the
// table/view name this way at the end of its comment, regardless of
// what precedes it ("-- Table structure for table `orders`").
func ExtractIdentifier(line string) string {
	last := strings.LastIndexByte(line, '`')
	if last < 0 {
		return ""
	}
	prefix := line[:last]
	first := strings.LastIndexByte(prefix, '`')
	if first < 0 {
		return ""
	}
	return line[first+1 : last]
}
