package upk

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/upk/chunk"
	"github.com/arloliu/upk/compress"
	"github.com/arloliu/upk/errs"
	"github.com/arloliu/upk/format"
	"github.com/arloliu/upk/internal/options"
)

// LoadConfig holds the settings of a loaded package.
type LoadConfig struct {
	logger         logrus.FieldLogger
	forceWide      bool
	autoDecompress bool
	chunkCacheSize int
}

func newLoadConfig() *LoadConfig {
	return &LoadConfig{
		logger:         discardLogger(),
		chunkCacheSize: chunk.DefaultCacheSize,
	}
}

// LoadOption configures Load, LoadFile and Builder.Package.
type LoadOption = options.Option[*LoadConfig]

// WithLogger sets the logger for package operations. By default nothing is logged.
func WithLogger(logger logrus.FieldLogger) LoadOption {
	return options.New(func(c *LoadConfig) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", errs.ErrInvalidOption)
		}
		c.logger = logger

		return nil
	})
}

// WithForceWideStrings makes every string the package writes UTF-16, even
// plain ASCII.
func WithForceWideStrings(force bool) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.forceWide = force
	})
}

// WithAutoDecompress makes Load decompress a compressed package right away
// instead of stopping after the summary.
func WithAutoDecompress(enabled bool) LoadOption {
	return options.NoError(func(c *LoadConfig) {
		c.autoDecompress = enabled
	})
}

// WithChunkCacheSize sets how many inflated chunks are cached while a
// compressed package is read.
func WithChunkCacheSize(n int) LoadOption {
	return options.New(func(c *LoadConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: chunk cache size %d", errs.ErrInvalidOption, n)
		}
		c.chunkCacheSize = n

		return nil
	})
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

// CompressConfig holds the settings of a Compress call.
type CompressConfig struct {
	maxChunkSize int64
	blockSize    int
	level        int
	flags        format.CompressionFlags
}

func newCompressConfig() *CompressConfig {
	return &CompressConfig{
		maxChunkSize: chunk.DefaultMaxChunkSize,
		blockSize:    chunk.DefaultBlockSize,
		level:        compress.DefaultLevel,
		flags:        format.CompressZLIB,
	}
}

// CompressOption configures Package.Compress.
type CompressOption = options.Option[*CompressConfig]

// WithMaxChunkSize sets the uncompressed size a chunk may reach before a new
// one is started.
func WithMaxChunkSize(n int64) CompressOption {
	return options.New(func(c *CompressConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: max chunk size %d", errs.ErrInvalidOption, n)
		}
		c.maxChunkSize = n

		return nil
	})
}

// WithBlockSize sets the nominal uncompressed size of the blocks inside a chunk.
func WithBlockSize(n int) CompressOption {
	return options.New(func(c *CompressConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: block size %d", errs.ErrInvalidOption, n)
		}
		c.blockSize = n

		return nil
	})
}

// WithCompressionLevel sets the deflate level.
func WithCompressionLevel(level int) CompressOption {
	return options.New(func(c *CompressConfig) error {
		if _, err := compress.NewZlibCompressor(level); err != nil {
			return err
		}
		c.level = level

		return nil
	})
}

// WithCompressionFlags sets the flags stored in the summary. The method must
// be ZLIB; the bias hints are kept as given.
func WithCompressionFlags(flags format.CompressionFlags) CompressOption {
	return options.New(func(c *CompressConfig) error {
		if flags.Method() != format.CompressZLIB {
			return fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, flags)
		}
		c.flags = flags

		return nil
	})
}

func (c *CompressConfig) writer() (*chunk.Writer, error) {
	codec, err := compress.NewZlibCompressor(c.level)
	if err != nil {
		return nil, err
	}

	return &chunk.Writer{BlockSize: c.blockSize, Codec: codec}, nil
}
