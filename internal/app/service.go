package app

import (
	"deckcraft/internal/content"
	"deckcraft/internal/deck"
	"deckcraft/internal/storage"
	"deckcraft/pkg/config"
)

type Service struct {
	cfg       *config.Config
	planner   *content.Planner
	assembler *deck.Assembler
	storage   *storage.LocalStorage
	uploader  storage.Uploader
	closers   []func() error
}

type ServiceOptions struct {
	Config    *config.Config
	Planner   *content.Planner
	Assembler *deck.Assembler
	Storage   *storage.LocalStorage
	// Uploader is optional; nil keeps decks local only.
	Uploader storage.Uploader
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		cfg:       opts.Config,
		planner:   opts.Planner,
		assembler: opts.Assembler,
		storage:   opts.Storage,
		uploader:  opts.Uploader,
	}
}

// Close releases clients opened by BuildService.
func (s *Service) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
