package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Validator 解析成功后对结构体做业务校验
type Validator[T any] func(T) error

// ExtractJSON 从模型输出中提取第一个 JSON 对象并解析为 T
// 容忍 markdown 代码块、前后说明文字、// 与 /* */ 注释以及 ".8" 这类数字
func ExtractJSON[T any](raw string, validate Validator[T]) (T, error) {
	var zero T

	text := stripCodeFences(raw)
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return zero, fmt.Errorf("%w: no JSON object found", ErrInvalidOutput)
	}
	// 先去掉注释，注释里的引号和括号不参与配对
	block := firstJSONObject(stripComments(text[start:]))
	if block == "" {
		return zero, fmt.Errorf("%w: no JSON object found", ErrInvalidOutput)
	}
	block = fixLeadingDecimals(block)

	var out T
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if validate != nil {
		if err := validate(out); err != nil {
			return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}
	return out, nil
}

// stripCodeFences 删除 ``` 开头的行
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// jsonScanner 跟踪字符串与转义状态
type jsonScanner struct {
	inString bool
	escaped  bool
}

// step 处理一个字节，返回该字节是否位于字符串之外
func (sc *jsonScanner) step(c byte) bool {
	if sc.escaped {
		sc.escaped = false
		return false
	}
	if sc.inString {
		switch c {
		case '\\':
			sc.escaped = true
		case '"':
			sc.inString = false
		}
		return false
	}
	if c == '"' {
		sc.inString = true
		return false
	}
	return true
}

// firstJSONObject 找到第一个括号平衡的 { ... }
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	var sc jsonScanner
	depth := 0
	for i := start; i < len(s); i++ {
		if !sc.step(s[i]) {
			continue
		}
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// stripComments 删除字符串之外的 // 行注释和 /* */ 块注释
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var sc jsonScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		outside := sc.step(c)
		if outside && c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i+1 < len(s) && s[i+1] != '\n' {
					i++
				}
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return b.String()
				}
				i += 2 + end + 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// fixLeadingDecimals 把字符串之外的 .8 / -.3 改写为 0.8 / -0.3
func fixLeadingDecimals(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	var sc jsonScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		outside := sc.step(c)
		if outside && c == '.' && i+1 < len(s) && isDigit(s[i+1]) {
			switch prevNonSpace(s, i-1) {
			case ':', ',', '[', '-':
				b.WriteByte('0')
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		}
		return s[i]
	}
	return 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
