package domain

import "fmt"

// ErrEmptyMessage 解析结果为空时返回的阻断性提示
const ErrEmptyMessage = "could not recognize data; check file format"

// Validate 对整个解析结果做结构校验，返回人类可读的警告列表。
// 不修改也不过滤条目。行号是条目在解析序列中的位置（从 1 开始），
// 不是原始文件的行号。
func Validate(entries []Entry) []string {
	if len(entries) == 0 {
		return []string{ErrEmptyMessage}
	}

	var warnings []string
	seen := make(map[string]bool, len(entries))

	for i, entry := range entries {
		line := i + 1

		if entry.Article == "" && entry.Name == "" {
			warnings = append(warnings, fmt.Sprintf("line %d: missing article or name", line))
			continue
		}

		// 解析阶段应已排除非正价格，这里兜底
		if !entry.Price.IsPositive() {
			warnings = append(warnings, fmt.Sprintf("line %d: invalid price", line))
		}

		key := entry.Key()
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("line %d: duplicate entry '%s'", line, key))
		}
		seen[key] = true
	}

	return warnings
}
