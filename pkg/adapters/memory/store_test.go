package memory_test

import (
	"testing"

	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, memory.NewStore())
}
