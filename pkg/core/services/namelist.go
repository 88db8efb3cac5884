package services

import (
	"fmt"
	"math/rand/v2"
	"os"

	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/pkg/roster"
)

// WriteNameList reads the roster at rosterPath, shuffles each gender group with
// seed and writes the numbered name list to outPath
func WriteNameList(rosterPath, outPath string, seed uint64, logger *zap.Logger) ([]roster.Entry, error) {
	in, err := os.Open(rosterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer in.Close()

	groups, err := roster.Read(in)
	if err != nil {
		return nil, err
	}
	entries := roster.Shuffle(groups, rand.New(rand.NewPCG(seed, 0)))

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create name list: %w", err)
	}
	if err := roster.Write(out, entries); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close name list: %w", err)
	}

	logger.Info("Wrote name list", zap.String("file", outPath), zap.Int("players", len(entries)), zap.Int("groups", len(groups)))
	return entries, nil
}
