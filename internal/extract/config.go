package extract

import "github.com/roivaz/repometa/internal/repometa"

const (
	DefaultInputPath     = "./repo_metadata.json"
	DefaultOutputPath    = "./repo_metadata.csv"
	DefaultProgressEvery = 20000
)

type Config struct {
	InputPath     string
	OutputPath    string
	StarThreshold int64
	ProgressEvery int // examined records between progress lines
}

// DefaultConfig returns the fixed paths and threshold the tool runs with.
func DefaultConfig() Config {
	return Config{
		InputPath:     DefaultInputPath,
		OutputPath:    DefaultOutputPath,
		StarThreshold: repometa.DefaultStarThreshold,
		ProgressEvery: DefaultProgressEvery,
	}
}
