package convert

import (
	"strconv"
	"strings"
)

// textFormat MTEXT 中第一个 \f 代码给出的字体
type textFormat struct {
	Family string
	Bold   bool
	Italic bool
}

// specialCodes TEXT/ATTRIB 中的 %% 控制码
var specialCodes = strings.NewReplacer(
	"%%d", "°", "%%D", "°",
	"%%p", "±", "%%P", "±",
	"%%c", "⌀", "%%C", "⌀",
	"%%%", "%",
	"%%u", "", "%%U", "",
	"%%o", "", "%%O", "",
	"%%k", "", "%%K", "",
)

// normalizeText 单行文字：控制码与 \U+XXXX 转义
func normalizeText(raw string) string {
	return decodeUnicode(specialCodes.Replace(raw))
}

// decodeUnicode 把 \U+XXXX 替换为对应字符，格式不对的原样保留
func decodeUnicode(s string) string {
	if !strings.Contains(s, `\U+`) && !strings.Contains(s, `\u+`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+7 <= len(s) && (s[i+1] == 'U' || s[i+1] == 'u') && s[i+2] == '+' {
			if r, err := strconv.ParseUint(s[i+3:i+7], 16, 32); err == nil {
				b.WriteRune(rune(r))
				i += 6
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// parseMText 去掉 MTEXT 格式代码，\P 换行，返回纯文本和字体
func parseMText(raw string) (string, textFormat) {
	var (
		b      strings.Builder
		format textFormat
		seen   bool
		src    = []rune(specialCodes.Replace(raw))
	)

	// 读到分号为止，返回参数和分号之后的位置
	param := func(from int) (string, int) {
		for j := from; j < len(src); j++ {
			if src[j] == ';' {
				return string(src[from:j]), j + 1
			}
		}
		return string(src[from:]), len(src)
	}

	for i := 0; i < len(src); i++ {
		r := src[i]
		switch r {
		case '{', '}':
			continue
		case '\\':
		default:
			b.WriteRune(r)
			continue
		}

		if i+1 >= len(src) {
			b.WriteRune(r)
			break
		}
		code := src[i+1]
		switch code {
		case 'P', 'N':
			b.WriteByte('\n')
			i++
		case '~':
			b.WriteRune(' ')
			i++
		case '\\', '{', '}':
			b.WriteRune(code)
			i++
		case 'L', 'l', 'O', 'o', 'K', 'k':
			i++
		case 'U', 'u':
			if i+6 < len(src) && src[i+2] == '+' {
				if v, err := strconv.ParseUint(string(src[i+3:i+7]), 16, 32); err == nil {
					b.WriteRune(rune(v))
					i += 6
					continue
				}
			}
			b.WriteRune(code)
			i++
		case 'f', 'F':
			p, next := param(i + 2)
			if !seen {
				format, seen = parseFont(p), true
			}
			i = next - 1
		case 'S':
			// 堆叠分数 1^2 / 1#2 -> 1/2
			p, next := param(i + 2)
			b.WriteString(strings.NewReplacer("^", "/", "#", "/").Replace(p))
			i = next - 1
		case 'A', 'C', 'c', 'H', 'h', 'W', 'w', 'Q', 'q', 'T', 't', 'p', 'X':
			_, next := param(i + 2)
			i = next - 1
		default:
			b.WriteRune(code)
			i++
		}
	}

	return b.String(), format
}

// parseFont \fArial|b1|i0|c0|p34;
func parseFont(p string) textFormat {
	parts := strings.Split(p, "|")
	format := textFormat{Family: strings.TrimSpace(parts[0])}
	for _, part := range parts[1:] {
		switch part {
		case "b1":
			format.Bold = true
		case "i1":
			format.Italic = true
		}
	}
	return format
}
