package argsio

import (
	"os"
	"strconv"
)

func fallbackTermSizeFromEnv() (int, int) {
	return envDimension("COLUMNS"), envDimension("LINES")
}

func envDimension(key string) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
