package extension

import (
	"github.com/bytedance/sonic"

	"github.com/lk2023060901/stasis-go/pkg/stasis"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

type jsonSerializer[T any] struct {
	api   sonic.API
	bytes stasis.Serializer[[]byte]
}

// JSON 返回用 sonic 把 T 编码为长度前缀 JSON 文档的序列化器。
// 键按字典序输出，相同的值得到相同的字节。
func JSON[T any]() stasis.Serializer[T] {
	return &jsonSerializer[T]{
		api:   sonic.Config{SortMapKeys: true}.Froze(),
		bytes: stasis.ByteArraySerializer(),
	}
}

func (s *jsonSerializer[T]) Write(w *stasis.Writer, out stasis.Output, v T) error {
	data, err := s.api.Marshal(v)
	if err != nil {
		return merr.WrapErrIoFailed(err, "marshal json")
	}
	return s.bytes.Write(w, out, data)
}

func (s *jsonSerializer[T]) Read(r *stasis.Reader, in stasis.Input) (T, error) {
	var v T
	data, err := s.bytes.Read(r, in)
	if err != nil {
		return v, err
	}
	if err := s.api.Unmarshal(data, &v); err != nil {
		return v, merr.WrapErrIoFailed(err, "unmarshal json")
	}
	return v, nil
}
