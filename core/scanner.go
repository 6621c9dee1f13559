package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

type Scanner struct {
	reader  *bufio.Reader
	LastTag Tag
	line    int
	done    bool
	err     error
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
	}
}

func (s *Scanner) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		// 最后一行没有换行符
		err = nil
	}
	if err == nil {
		s.line++
	}
	return line, err
}

func (s *Scanner) Next() bool {
	if s.done {
		return false
	}
	ok := s.next()
	if !ok {
		s.done = true
	}
	return ok
}

func (s *Scanner) next() bool {
	if s.err != nil {
		return false
	}

	// 1. 读取 Code 行，跳过空行
	var codeStr string
	for {
		codeLine, err := s.readLine()
		if err != nil {
			if err != io.EOF {
				s.err = err
			}
			return false
		}
		if codeStr = strings.TrimSpace(codeLine); codeStr != "" {
			break
		}
	}

	code, err := strconv.Atoi(codeStr)
	if err != nil {
		s.err = fmt.Errorf("line %d: invalid group code %q: %w", s.line, codeStr, err)
		return false
	}

	// 2. 读取 Value 行
	valueLine, err := s.readLine()
	if err != nil {
		// Value 行如果 EOF 也是不完整的
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		s.err = fmt.Errorf("line %d: missing value for group code %d: %w", s.line, code, err)
		return false
	}

	// 去掉行尾的换行符，但保留 Value 开头的空格（DXF 规范要求）
	value := strings.TrimRight(valueLine, "\r\n")

	// R2007 之前的文件按 $DWGCODEPAGE 编码（通常是 ANSI_1252）
	if !utf8.ValidString(value) {
		if decoded, e := charmap.Windows1252.NewDecoder().String(value); e == nil {
			value = decoded
		}
	}

	s.LastTag = Tag{Code: code, Value: value}
	return true
}

// Done 标签流已结束（EOF 或出错），LastTag 不再变化
func (s *Scanner) Done() bool {
	return s.done
}

func (s *Scanner) Err() error {
	return s.err
}
