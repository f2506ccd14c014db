package script

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"
)

// ConditionKind 释放条件类型
type ConditionKind string

const (
	// ConditionFixed 固定值条件：redeemer 必须等于 datum 中记录的整数
	ConditionFixed ConditionKind = "fixed"
	// ConditionTimeLocked 时间锁条件：到期后由受益人签名领取
	ConditionTimeLocked ConditionKind = "time_locked"
)

// Condition 锁定输出的释放条件
//
// 条件以 datum 的形式随输出上链；FindReleasable 通过解码 datum
// 还原条件，Release 根据条件类型构造对应的见证。
type Condition struct {
	Kind ConditionKind

	// FixedValue 固定值条件记录的整数
	FixedValue int64

	// Beneficiary 时间锁条件的受益人密钥哈希（28 字节）
	Beneficiary []byte
	// DeadlineMillis 时间锁到期时间（毫秒级 Unix 时间）
	DeadlineMillis int64
}

// FixedCondition 构造固定值条件
func FixedCondition(value int64) Condition {
	return Condition{
		Kind:       ConditionFixed,
		FixedValue: value,
	}
}

// TimeLockedCondition 构造时间锁条件
func TimeLockedCondition(beneficiary []byte, deadline time.Time) Condition {
	return Condition{
		Kind:           ConditionTimeLocked,
		Beneficiary:    beneficiary,
		DeadlineMillis: deadline.UnixMilli(),
	}
}

// Validate 校验条件参数
func (c Condition) Validate() error {
	switch c.Kind {
	case ConditionFixed:
		return nil
	case ConditionTimeLocked:
		if len(c.Beneficiary) != 28 {
			return fmt.Errorf("beneficiary must be a 28-byte key hash, got %d bytes", len(c.Beneficiary))
		}
		if c.DeadlineMillis <= 0 {
			return fmt.Errorf("deadline must be positive, got %d", c.DeadlineMillis)
		}
		return nil
	default:
		return fmt.Errorf("unknown condition kind: %s", c.Kind)
	}
}

// Deadline 返回时间锁到期时间
func (c Condition) Deadline() time.Time {
	return time.UnixMilli(c.DeadlineMillis)
}

// Datum 将条件表达为数据树
func (c Condition) Datum() (Data, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Kind {
	case ConditionFixed:
		return IntData{Value: c.FixedValue}, nil
	case ConditionTimeLocked:
		return ConstrData{
			Index: 0,
			Fields: []Data{
				BytesData{Value: c.Beneficiary},
				IntData{Value: c.DeadlineMillis},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown condition kind: %s", c.Kind)
	}
}

// MarshalDatum 将条件编码为 datum CBOR
func (c Condition) MarshalDatum() ([]byte, error) {
	datum, err := c.Datum()
	if err != nil {
		return nil, err
	}
	return MarshalData(datum)
}

// MarshalDatumHex 将条件编码为 datum CBOR 的 hex 表示
func (c Condition) MarshalDatumHex() (string, error) {
	raw, err := c.MarshalDatum()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// Equal 比较两个条件是否等价
func (c Condition) Equal(o Condition) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case ConditionFixed:
		return c.FixedValue == o.FixedValue
	case ConditionTimeLocked:
		return bytes.Equal(c.Beneficiary, o.Beneficiary) && c.DeadlineMillis == o.DeadlineMillis
	default:
		return false
	}
}

// TryDecodeCondition 尝试从 datum CBOR 还原条件
//
// 无法识别的 datum（解码失败或结构不匹配）返回 ok=false 而不是错误：
// 链上同一脚本地址下可能存在其他用途的输出，跳过即可。
func TryDecodeCondition(raw []byte) (Condition, bool) {
	if len(raw) == 0 {
		return Condition{}, false
	}

	data, err := UnmarshalData(raw)
	if err != nil {
		return Condition{}, false
	}

	switch v := data.(type) {
	case IntData:
		return FixedCondition(v.Value), true

	case ConstrData:
		if v.Index != 0 || len(v.Fields) != 2 {
			return Condition{}, false
		}
		beneficiary, ok := v.Fields[0].(BytesData)
		if !ok || len(beneficiary.Value) != 28 {
			return Condition{}, false
		}
		deadline, ok := v.Fields[1].(IntData)
		if !ok || deadline.Value <= 0 {
			return Condition{}, false
		}
		return Condition{
			Kind:           ConditionTimeLocked,
			Beneficiary:    beneficiary.Value,
			DeadlineMillis: deadline.Value,
		}, true

	default:
		return Condition{}, false
	}
}

// TryDecodeConditionHex 尝试从 hex 编码的 datum 还原条件
func TryDecodeConditionHex(datumHex string) (Condition, bool) {
	raw, err := hex.DecodeString(datumHex)
	if err != nil {
		return Condition{}, false
	}
	return TryDecodeCondition(raw)
}

// UnitRedeemer 空构造器 redeemer 的 CBOR 编码
func UnitRedeemer() ([]byte, error) {
	return MarshalData(Unit())
}

// IntRedeemer 整数 redeemer 的 CBOR 编码
func IntRedeemer(value int64) ([]byte, error) {
	return MarshalData(IntData{Value: value})
}
