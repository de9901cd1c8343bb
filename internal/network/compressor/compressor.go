package compressor

import "github.com/lk2023060901/stasis-go/pkg/util/merr"

// Compressor 对一整块数据做单次压缩与解压。
type Compressor interface {
	// Compress 把 src 压缩后追加到 dst[:0]，dst 可以传入复用的缓冲区。
	Compress(dst, src []byte) ([]byte, error)

	// Decompress 与 Compress 对称，src 必须是 Compress 的输出。
	Decompress(dst, src []byte) ([]byte, error)
}

const (
	NameNop  = "none"
	NameZstd = "zstd"
)

// NopCompressor 原样返回输入。
type NopCompressor struct{}

var _ Compressor = NopCompressor{}

func (NopCompressor) Compress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

func (NopCompressor) Decompress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

// ByName 创建指定名字的压缩器，空字符串等同于 none。
func ByName(name string) (Compressor, error) {
	switch name {
	case "", NameNop:
		return NopCompressor{}, nil
	case NameZstd:
		return NewZstdCompressor()
	default:
		return nil, merr.WrapErrParameterInvalidMsg("unknown compressor %q", name)
	}
}
