package graphwire

// Wire tags. Every encoded value starts with exactly one of these bytes.
const (
	// value tags
	TagInteger  byte = 'i'
	TagLong     byte = 'l'
	TagDouble   byte = 'd'
	TagNull     byte = 'n'
	TagEmpty    byte = 'e'
	TagTrue     byte = 't'
	TagFalse    byte = 'f'
	TagNaN      byte = 'N'
	TagInfinity byte = 'I'
	TagDate     byte = 'D'
	TagTime     byte = 'T'
	TagBytes    byte = 'b'
	TagUTF8Char byte = 'u'
	TagString   byte = 's'
	TagGUID     byte = 'g'
	TagList     byte = 'a'
	TagMap      byte = 'm'
	TagClass    byte = 'c'
	TagObject   byte = 'o'
	TagRef      byte = 'r'
	TagError    byte = 'E'

	// delimiters
	TagPos        byte = '+'
	TagNeg        byte = '-'
	TagSemicolon  byte = ';'
	TagOpenbrace  byte = '{'
	TagClosebrace byte = '}'
	TagQuote      byte = '"'
	TagPoint      byte = '.'
	TagUTC        byte = 'Z'
)

// TagName returns a human-readable name for a tag byte.
func TagName(tag byte) string {
	if tag >= '0' && tag <= '9' {
		return "Digit"
	}
	switch tag {
	case TagInteger:
		return "Integer"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagNull:
		return "Null"
	case TagEmpty:
		return "Empty"
	case TagTrue:
		return "True"
	case TagFalse:
		return "False"
	case TagNaN:
		return "NaN"
	case TagInfinity:
		return "Infinity"
	case TagDate:
		return "Date"
	case TagTime:
		return "Time"
	case TagBytes:
		return "Bytes"
	case TagUTF8Char:
		return "UTF8Char"
	case TagString:
		return "String"
	case TagGUID:
		return "GUID"
	case TagList:
		return "List"
	case TagMap:
		return "Map"
	case TagClass:
		return "Class"
	case TagObject:
		return "Object"
	case TagRef:
		return "Ref"
	case TagError:
		return "Error"
	case TagSemicolon:
		return "Semicolon"
	case TagOpenbrace:
		return "Openbrace"
	case TagClosebrace:
		return "Closebrace"
	case TagQuote:
		return "Quote"
	case TagPos:
		return "Pos"
	case TagNeg:
		return "Neg"
	case TagPoint:
		return "Point"
	case TagUTC:
		return "UTC"
	default:
		return "Unknown"
	}
}
