package dxf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zooyer/dxf2elmt/core"
	"github.com/zooyer/dxf2elmt/entities"
)

// ErrBinaryDXF 二进制 DXF 不在支持范围内
var ErrBinaryDXF = errors.New("binary DXF is not supported")

const binarySentinel = "AutoCAD Binary DXF"

type Block struct {
	Name     string
	Base     core.Point // 组码 10/20/30，块基点
	Flags    int        // 组码 70
	Entities []entities.Entity
}

// IsXRef 外部参照块没有本地实体
func (b *Block) IsXRef() bool {
	return b.Flags&4 != 0
}

type Document struct {
	Units    int               // $INSUNITS，0 = 无单位
	Blocks   map[string]*Block // 键为大写块名
	Entities []entities.Entity
}

// Block 按名称查找块定义（不区分大小写）
func (d *Document) Block(name string) (*Block, bool) {
	block, ok := d.Blocks[strings.ToUpper(strings.TrimSpace(name))]
	return block, ok
}

func (d *Document) parseHeader(scanner *core.Scanner) {
	var variable string
	for scanner.Next() {
		tag := scanner.LastTag
		if tag.Is("ENDSEC") {
			break
		}
		switch {
		case tag.Code == 9:
			variable = strings.ToUpper(tag.AsString())
		case variable == "$INSUNITS" && tag.Code == 70:
			d.Units = tag.AsInt()
		}
	}
}

// parseEntityList 从当前标签开始连续解析实体，直到遇到任一终止标签
// 实体解析失败时返回已解析的部分和带实体类型的错误
func parseEntityList(scanner *core.Scanner, terminators ...string) ([]entities.Entity, error) {
	var list []entities.Entity
	for {
		tag := scanner.LastTag
		if tag.Code == 0 {
			for _, name := range terminators {
				if tag.Is(name) {
					return list, nil
				}
			}
			ent := entities.CreateEntity(tag.Value)
			if err := ent.Parse(scanner); err != nil {
				return list, fmt.Errorf("parse %s: %w", tag.Value, err)
			}
			list = append(list, ent)
			if scanner.Done() {
				return list, nil
			}
			continue
		}
		if !scanner.Next() {
			return list, nil
		}
	}
}

func (d *Document) parseBlocks(scanner *core.Scanner) error {
	if !scanner.Next() {
		return nil
	}
	for {
		tag := scanner.LastTag
		if tag.Is("ENDSEC") {
			return nil
		}
		if !tag.Is("BLOCK") {
			if !scanner.Next() {
				return nil
			}
			continue
		}

		// 块头：名称、基点、标志
		block := &Block{}
		for scanner.Next() && scanner.LastTag.Code != 0 {
			t := scanner.LastTag
			switch t.Code {
			case 2:
				block.Name = strings.ToUpper(t.AsString())
			case 10:
				block.Base.X = t.AsFloat()
			case 20:
				block.Base.Y = t.AsFloat()
			case 30:
				block.Base.Z = t.AsFloat()
			case 70:
				block.Flags = t.AsInt()
			}
		}

		list, err := parseEntityList(scanner, "ENDBLK", "ENDSEC")
		if err != nil {
			return fmt.Errorf("block %s: %w", block.Name, err)
		}
		block.Entities = list
		if block.Name != "" {
			d.Blocks[block.Name] = block
		}

		if scanner.LastTag.Is("ENDBLK") {
			// 消耗掉 ENDBLK 的组码
			for scanner.Next() && scanner.LastTag.Code != 0 {
			}
		}
		if scanner.Done() {
			return nil
		}
	}
}

func (d *Document) parseEntities(scanner *core.Scanner) error {
	if !scanner.Next() {
		return nil
	}
	list, err := parseEntityList(scanner, "ENDSEC")
	if err != nil {
		return err
	}
	d.Entities = append(d.Entities, list...)
	return nil
}

func Open(filename string) (doc *Document, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}

	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}()

	return Load(file)
}

func Load(reader io.Reader) (doc *Document, err error) {
	var (
		buffered = bufio.NewReader(reader)
		scanner  = core.NewScanner(buffered)
		document = &Document{
			Blocks:   make(map[string]*Block),
			Entities: make([]entities.Entity, 0, 1024),
		}
	)

	if head, _ := buffered.Peek(len(binarySentinel)); string(head) == binarySentinel {
		return nil, ErrBinaryDXF
	}

	for scanner.Next() {
		tag := scanner.LastTag
		if tag.Is("SECTION") {
			if !scanner.Next() {
				break
			}
			sectionName := strings.ToUpper(scanner.LastTag.AsString())
			switch sectionName {
			case "HEADER":
				document.parseHeader(scanner)
			case "BLOCKS":
				err = document.parseBlocks(scanner)
			case "ENTITIES":
				err = document.parseEntities(scanner)
			}
			if err != nil {
				return nil, err
			}
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return document, nil
}
