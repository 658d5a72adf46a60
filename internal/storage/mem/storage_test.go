package mem

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/goserg/devconnector/internal/storage"
	"github.com/goserg/devconnector/internal/storage/storagetest"
)

func TestStorage(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func() storage.Storage { return New() },
	})
}
