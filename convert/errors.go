package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zooyer/dxf2elmt/utils"
)

var (
	// ErrInvalidConfiguration 配置错误，在任何转换工作开始前终止
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrCyclicBlockReference 块循环引用或嵌套超过上限
	ErrCyclicBlockReference = errors.New("cyclic block reference")
	// ErrUnresolvableBlockName 引用了不存在的块
	ErrUnresolvableBlockName = errors.New("unresolvable block name")
	// ErrArrayTooLarge 阵列插入的单元数超过 utils.MaxArrayCells
	ErrArrayTooLarge = errors.New("array insert too large")
	// ErrEmptyDrawing 没有任何可输出的内容
	ErrEmptyDrawing = errors.New("nothing to convert")
)

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// CyclicReferenceError 记录出问题的块名与当前展开路径
type CyclicReferenceError struct {
	Name  string
	Chain []string
	Depth bool // 因超过最大嵌套深度而中止
}

func (e *CyclicReferenceError) Error() string {
	chain := strings.Join(append(append([]string{}, e.Chain...), e.Name), " -> ")
	if e.Depth {
		return fmt.Sprintf("block %q exceeds max nesting depth %d: %s", e.Name, MaxBlockDepth, chain)
	}
	return fmt.Sprintf("cyclic reference to block %q: %s", e.Name, chain)
}

func (e *CyclicReferenceError) Is(target error) bool {
	return target == ErrCyclicBlockReference
}

type UnresolvableBlockError struct {
	Name string
}

func (e *UnresolvableBlockError) Error() string {
	return fmt.Sprintf("block %q is not defined", e.Name)
}

func (e *UnresolvableBlockError) Is(target error) bool {
	return target == ErrUnresolvableBlockName
}

// ArrayTooLargeError 阵列插入被跳过，没有展开任何单元
type ArrayTooLargeError struct {
	Name    string
	Columns int
	Rows    int
}

func (e *ArrayTooLargeError) Error() string {
	return fmt.Sprintf("array insert of block %q has %d x %d cells, limit is %d",
		e.Name, e.Columns, e.Rows, utils.MaxArrayCells)
}

func (e *ArrayTooLargeError) Is(target error) bool {
	return target == ErrArrayTooLarge
}
