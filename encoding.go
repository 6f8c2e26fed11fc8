package sasreader

import (
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is the character encoding declared by byte 70 of the header.
// Text is nil when no decoder is available for it; such text is passed
// through as raw bytes.
type Encoding struct {
	Code byte
	Name string
	Text xencoding.Encoding
}

// Decode converts b from the encoding to UTF-8. Bytes are returned
// unchanged if the encoding has no decoder or if decoding fails.
func (e Encoding) Decode(b []byte) string {
	if e.Text == nil {
		return string(b)
	}
	out, err := e.Text.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// EncodingTable maps the header's encoding byte to an Encoding.
type EncodingTable interface {
	Lookup(code byte) (Encoding, bool)
}

// EncodingMap is an EncodingTable backed by a map.
type EncodingMap map[byte]Encoding

func (m EncodingMap) Lookup(code byte) (Encoding, bool) {
	e, ok := m[code]
	return e, ok
}

func enc(code byte, name string, text xencoding.Encoding) Encoding {
	return Encoding{Code: code, Name: name, Text: text}
}

// DefaultEncodings is the encoding table used unless another is supplied.
var DefaultEncodings = EncodingMap{
	0:   enc(0, "windows-1252", charmap.Windows1252),
	20:  enc(20, "utf-8", unicode.UTF8),
	28:  enc(28, "us-ascii", nil),
	29:  enc(29, "iso-8859-1", charmap.ISO8859_1),
	30:  enc(30, "iso-8859-2", charmap.ISO8859_2),
	31:  enc(31, "iso-8859-3", charmap.ISO8859_3),
	32:  enc(32, "iso-8859-4", charmap.ISO8859_4),
	33:  enc(33, "iso-8859-5", charmap.ISO8859_5),
	34:  enc(34, "iso-8859-6", charmap.ISO8859_6),
	35:  enc(35, "iso-8859-7", charmap.ISO8859_7),
	36:  enc(36, "iso-8859-8", charmap.ISO8859_8),
	37:  enc(37, "iso-8859-9", charmap.ISO8859_9),
	39:  enc(39, "iso-8859-11", nil),
	40:  enc(40, "iso-8859-15", charmap.ISO8859_15),
	41:  enc(41, "cp437", charmap.CodePage437),
	42:  enc(42, "cp850", charmap.CodePage850),
	43:  enc(43, "cp852", charmap.CodePage852),
	44:  enc(44, "cp857", nil),
	45:  enc(45, "cp858", charmap.CodePage858),
	46:  enc(46, "cp862", charmap.CodePage862),
	47:  enc(47, "cp864", nil),
	48:  enc(48, "cp865", charmap.CodePage865),
	49:  enc(49, "cp866", charmap.CodePage866),
	50:  enc(50, "cp869", nil),
	51:  enc(51, "cp874", charmap.Windows874),
	52:  enc(52, "cp921", nil),
	53:  enc(53, "cp922", nil),
	54:  enc(54, "cp1129", nil),
	55:  enc(55, "cp720", nil),
	56:  enc(56, "cp737", nil),
	57:  enc(57, "cp775", nil),
	58:  enc(58, "cp860", charmap.CodePage860),
	59:  enc(59, "cp863", charmap.CodePage863),
	60:  enc(60, "windows-1250", charmap.Windows1250),
	61:  enc(61, "windows-1251", charmap.Windows1251),
	62:  enc(62, "windows-1252", charmap.Windows1252),
	63:  enc(63, "windows-1253", charmap.Windows1253),
	64:  enc(64, "windows-1254", charmap.Windows1254),
	65:  enc(65, "windows-1255", charmap.Windows1255),
	66:  enc(66, "windows-1256", charmap.Windows1256),
	67:  enc(67, "windows-1257", charmap.Windows1257),
	68:  enc(68, "windows-1258", charmap.Windows1258),
	69:  enc(69, "macroman", charmap.Macintosh),
	70:  enc(70, "macarabic", nil),
	71:  enc(71, "machebrew", nil),
	72:  enc(72, "macgreek", nil),
	73:  enc(73, "macthai", nil),
	75:  enc(75, "macturkish", nil),
	76:  enc(76, "macukraine", charmap.MacintoshCyrillic),
	118: enc(118, "cp950", traditionalchinese.Big5),
	119: enc(119, "euc-tw", nil),
	123: enc(123, "big5", traditionalchinese.Big5),
	125: enc(125, "gb18030", simplifiedchinese.GB18030),
	126: enc(126, "windows-936", simplifiedchinese.GBK),
	128: enc(128, "cp1381", nil),
	134: enc(134, "euc-jp", japanese.EUCJP),
	136: enc(136, "cp949", korean.EUCKR),
	137: enc(137, "cp942", nil),
	138: enc(138, "cp932", japanese.ShiftJIS),
	140: enc(140, "euc-kr", korean.EUCKR),
	141: enc(141, "cp949", korean.EUCKR),
	142: enc(142, "cp949", korean.EUCKR),
	163: enc(163, "maciceland", nil),
	167: enc(167, "iso-2022-jp", japanese.ISO2022JP),
	168: enc(168, "iso-2022-kr", nil),
	169: enc(169, "iso-2022-cn", nil),
	172: enc(172, "iso-2022-cn-ext", nil),
	204: enc(204, "windows-1252", charmap.Windows1252),
	205: enc(205, "gb18030", simplifiedchinese.GB18030),
	227: enc(227, "iso-8859-14", charmap.ISO8859_14),
	242: enc(242, "iso-8859-13", charmap.ISO8859_13),
	245: enc(245, "maccroatian", nil),
	246: enc(246, "maccyrillic", charmap.MacintoshCyrillic),
	247: enc(247, "macromania", nil),
	248: enc(248, "shift_jisx0213", japanese.ShiftJIS),
}

// EncodingByName returns the first entry of DefaultEncodings with the given
// name.
func EncodingByName(name string) (Encoding, bool) {
	var best Encoding
	found := false
	for code, e := range DefaultEncodings {
		if e.Name != name {
			continue
		}
		if !found || code < best.Code {
			best = e
			found = true
		}
	}
	return best, found
}
