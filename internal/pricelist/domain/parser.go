package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Format 价格表文本的解析策略
type Format int

const (
	// FormatFreeform 自由格式："Название: Цена" / "Название - Цена"
	FormatFreeform Format = iota
	// FormatSemicolon 分号分隔
	FormatSemicolon
	// FormatTab 制表符分隔
	FormatTab
	// FormatComma 逗号分隔
	FormatComma
)

// Delimiter 返回分隔符；自由格式返回空串
func (f Format) Delimiter() string {
	switch f {
	case FormatSemicolon:
		return ";"
	case FormatTab:
		return "\t"
	case FormatComma:
		return ","
	default:
		return ""
	}
}

var (
	// 识别为 SKU 编码的字段：仅字母数字、下划线和连字符，不含空格
	articlePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// 货币符号与货币词，大小写不敏感；"руб." 连同句点一起去掉
	currencyPattern = regexp.MustCompile(`(?i)руб\.?|rub|[₽$€]`)
	// 自由格式行："<название> : <цена>"，分隔符为冒号或连字符（短横线/长破折号），
	// 价格部分以数字开头，可带货币符号
	freeformPattern = regexp.MustCompile(`(?i)^(.+?)\s*[:\-–]\s*(\d[\d\s\x{00A0}.,]*\s*(?:₽|\$|€|руб\.?|rub)?\.?)\s*$`)
	// 表头关键词，出现在首行即跳过该行
	headerKeywords = []string{"артикул", "article", "название", "name"}
)

// DetectFormat 选择解析策略。优先级固定：分号 > 制表符 > 逗号 > 自由格式。
// 很多地区的价格表即使字段里有逗号（小数分隔符）也用分号做列分隔，
// 所以分号必须先于逗号判断。
func DetectFormat(content string) Format {
	if strings.Contains(content, ";") {
		return FormatSemicolon
	}
	if strings.Contains(content, "\t") {
		return FormatTab
	}
	first := firstNonEmptyLine(content)
	if strings.Contains(first, ",") && len(strings.Split(first, ",")) >= 2 {
		return FormatComma
	}
	return FormatFreeform
}

// Parse 把原始文本解析为条目序列，保持输入行序。
// 解析不了的行直接丢弃，不报错也不计数；结构性问题由 Validate 统一处理。
func Parse(content string) []Entry {
	format := DetectFormat(content)
	if format == FormatFreeform {
		return parseFreeform(content)
	}
	return parseDelimited(content, format.Delimiter())
}

// parseDelimited 解析分隔符格式。首个非空行若像表头则跳过。
// 3 列及以上按 (артикул, название, цена) 取前三列；
// 恰好 2 列时第 1 列按是否形如 SKU 编码归类为 article 或 name。
func parseDelimited(content, delimiter string) []Entry {
	var entries []Entry
	first := true

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first {
			first = false
			if isHeaderLine(line) {
				continue
			}
		}

		fields := strings.Split(line, delimiter)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		var entry Entry
		switch {
		case len(fields) >= 3:
			price, ok := ParsePrice(fields[2])
			if !ok {
				continue
			}
			entry = Entry{Article: fields[0], Name: fields[1], Price: price}
		case len(fields) == 2:
			price, ok := ParsePrice(fields[1])
			if !ok {
				continue
			}
			if articlePattern.MatchString(fields[0]) {
				entry = Entry{Article: fields[0], Price: price}
			} else {
				entry = Entry{Name: fields[0], Price: price}
			}
		default:
			continue
		}

		entries = append(entries, entry)
	}

	return entries
}

// parseFreeform 解析 "Название: Цена" / "Название - Цена" 格式
func parseFreeform(content string) []Entry {
	var entries []Entry

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := freeformPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		price, ok := ParsePrice(m[2])
		if name == "" || !ok {
			continue
		}

		entries = append(entries, Entry{Name: name, Price: price})
	}

	return entries
}

// ParsePrice 解析价格串：去掉货币符号/货币词和所有空白（含 NBSP），
// 逗号视为小数点，结果必须是有限正数。
func ParsePrice(raw string) (decimal.Decimal, bool) {
	cleaned := currencyPattern.ReplaceAllString(raw, "")
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return decimal.Zero, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(value), true
}

// isHeaderLine 首行包含任一表头关键词即视为表头
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func firstNonEmptyLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}
