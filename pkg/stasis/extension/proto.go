// Package extension 提供以第三方格式编码值的序列化器：
// Protobuf 消息、JSON 文档以及压缩后的子流。
package extension

import (
	"google.golang.org/protobuf/proto"

	"github.com/lk2023060901/stasis-go/pkg/stasis"
	"github.com/lk2023060901/stasis-go/pkg/util/merr"
)

type protoSerializer[T proto.Message] struct {
	newMessage func() T
	bytes      stasis.Serializer[[]byte]
}

// Proto 返回把消息编码为长度前缀的 Protobuf 字节的序列化器。
// newMessage 为读端创建空消息，例如 func() *pb.User { return &pb.User{} }。
func Proto[T proto.Message](newMessage func() T) stasis.Serializer[T] {
	return &protoSerializer[T]{newMessage: newMessage, bytes: stasis.ByteArraySerializer()}
}

func (s *protoSerializer[T]) Write(w *stasis.Writer, out stasis.Output, v T) error {
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(v)
	if err != nil {
		return merr.WrapErrIoFailed(err, "marshal proto")
	}
	return s.bytes.Write(w, out, data)
}

func (s *protoSerializer[T]) Read(r *stasis.Reader, in stasis.Input) (T, error) {
	msg := s.newMessage()
	data, err := s.bytes.Read(r, in)
	if err != nil {
		return msg, err
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return msg, merr.WrapErrIoFailed(err, "unmarshal proto")
	}
	return msg, nil
}
