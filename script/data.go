package script

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
)

// Data 链上数据模型
//
// 脚本的 datum 与 redeemer 都由这棵小型数据树表达：
// 整数、字节串、列表，以及带构造器序号的字段组。
type Data interface {
	isData()
}

// IntData 整数
type IntData struct {
	Value int64
}

// BytesData 字节串
type BytesData struct {
	Value []byte
}

// ListData 列表
type ListData struct {
	Items []Data
}

// ConstrData 构造器（序号 + 字段列表）
type ConstrData struct {
	Index  uint64
	Fields []Data
}

func (IntData) isData()    {}
func (BytesData) isData()  {}
func (ListData) isData()   {}
func (ConstrData) isData() {}

// Unit 空构造器（序号 0，无字段），很多脚本以它作为占位 redeemer
func Unit() ConstrData {
	return ConstrData{Index: 0}
}

// 构造器序号与 CBOR 标签的映射：
// 0-6 → 121-127，7-127 → 1280-1400，更大的序号用通用标签 102 [index, fields]。
const (
	constrTagBase     = 121
	constrTagHighBase = 1280
	constrTagGeneral  = 102
)

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("create cbor encoder: %v", err))
	}
	return em
}()

// MarshalData 将数据树编码为确定性 CBOR
func MarshalData(d Data) ([]byte, error) {
	wire, err := toWire(d)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(wire)
}

// UnmarshalData 从 CBOR 解码数据树
//
// 链上返回的编码既可能是定长数组也可能是不定长数组，两者都接受。
func UnmarshalData(raw []byte) (Data, error) {
	var wire interface{}
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode cbor: %w", err)
	}
	return fromWire(wire)
}

func toWire(d Data) (interface{}, error) {
	switch v := d.(type) {
	case IntData:
		return v.Value, nil

	case BytesData:
		if v.Value == nil {
			return []byte{}, nil
		}
		return v.Value, nil

	case ListData:
		items := make([]interface{}, 0, len(v.Items))
		for _, item := range v.Items {
			wire, err := toWire(item)
			if err != nil {
				return nil, err
			}
			items = append(items, wire)
		}
		return items, nil

	case ConstrData:
		fields := make([]interface{}, 0, len(v.Fields))
		for _, field := range v.Fields {
			wire, err := toWire(field)
			if err != nil {
				return nil, err
			}
			fields = append(fields, wire)
		}

		switch {
		case v.Index <= 6:
			return cbor.Tag{Number: constrTagBase + v.Index, Content: fields}, nil
		case v.Index <= 127:
			return cbor.Tag{Number: constrTagHighBase + v.Index - 7, Content: fields}, nil
		default:
			return cbor.Tag{
				Number:  constrTagGeneral,
				Content: []interface{}{v.Index, fields},
			}, nil
		}

	default:
		return nil, fmt.Errorf("unsupported data node: %T", d)
	}
}

func fromWire(wire interface{}) (Data, error) {
	switch v := wire.(type) {
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("integer overflows int64: %d", v)
		}
		return IntData{Value: int64(v)}, nil

	case int64:
		return IntData{Value: v}, nil

	case []byte:
		return BytesData{Value: v}, nil

	case []interface{}:
		items := make([]Data, 0, len(v))
		for _, item := range v {
			d, err := fromWire(item)
			if err != nil {
				return nil, err
			}
			items = append(items, d)
		}
		return ListData{Items: items}, nil

	case cbor.Tag:
		return constrFromTag(v)

	default:
		return nil, fmt.Errorf("unsupported cbor node: %T", wire)
	}
}

func constrFromTag(tag cbor.Tag) (Data, error) {
	switch {
	case tag.Number >= constrTagBase && tag.Number <= constrTagBase+6:
		fields, err := fieldsFromContent(tag.Content)
		if err != nil {
			return nil, err
		}
		return ConstrData{Index: tag.Number - constrTagBase, Fields: fields}, nil

	case tag.Number >= constrTagHighBase && tag.Number <= constrTagHighBase+120:
		fields, err := fieldsFromContent(tag.Content)
		if err != nil {
			return nil, err
		}
		return ConstrData{Index: tag.Number - constrTagHighBase + 7, Fields: fields}, nil

	case tag.Number == constrTagGeneral:
		pair, ok := tag.Content.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("invalid general constructor: expected [index, fields]")
		}
		index, ok := pair[0].(uint64)
		if !ok {
			return nil, fmt.Errorf("invalid general constructor index: %T", pair[0])
		}
		fields, err := fieldsFromContent(pair[1])
		if err != nil {
			return nil, err
		}
		return ConstrData{Index: index, Fields: fields}, nil

	default:
		return nil, fmt.Errorf("unsupported cbor tag: %d", tag.Number)
	}
}

func fieldsFromContent(content interface{}) ([]Data, error) {
	raw, ok := content.([]interface{})
	if !ok {
		return nil, fmt.Errorf("constructor fields must be an array, got %T", content)
	}

	fields := make([]Data, 0, len(raw))
	for _, item := range raw {
		d, err := fromWire(item)
		if err != nil {
			return nil, err
		}
		fields = append(fields, d)
	}
	return fields, nil
}

// Equal 比较两棵数据树是否相等
func Equal(a, b Data) bool {
	switch av := a.(type) {
	case IntData:
		bv, ok := b.(IntData)
		return ok && av.Value == bv.Value

	case BytesData:
		bv, ok := b.(BytesData)
		return ok && bytes.Equal(av.Value, bv.Value)

	case ListData:
		bv, ok := b.(ListData)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true

	case ConstrData:
		bv, ok := b.(ConstrData)
		if !ok || av.Index != bv.Index || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if !Equal(av.Fields[i], bv.Fields[i]) {
				return false
			}
		}
		return true

	default:
		return false
	}
}
