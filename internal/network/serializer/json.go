package serializer

import (
	"github.com/bytedance/sonic"
)

// JSONSerializer 基于 bytedance/sonic 的 JSON 实现。
type JSONSerializer struct{}

var _ Serializer = JSONSerializer{}

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}
