// Copyright 2015 Matthew Holt and The Caddy Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package protosel

import "testing"

func TestProtoIDMaskSetClearHas(t *testing.T) {
	var m ProtoIDMask
	if !m.IsEmpty() {
		t.Fatal("zero mask should be empty")
	}

	m = m.Set(3)
	if !m.Has(3) {
		t.Error("expected bit 3 set")
	}
	if m.Has(4) {
		t.Error("did not expect bit 4 set")
	}

	m = m.Clear(3)
	if m.Has(3) {
		t.Error("expected bit 3 cleared")
	}
	if !m.IsEmpty() {
		t.Error("expected empty mask after clearing only bit")
	}
}

func TestProtoIDMaskForEachOrder(t *testing.T) {
	var m ProtoIDMask
	m = m.Set(5).Set(1).Set(9).Set(0)

	var got []ProtoID
	m.ForEach(func(id ProtoID) { got = append(got, id) })

	want := []ProtoID{0, 1, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("ForEach produced %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ForEach order[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if got := m.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}

type noopProtocol struct {
	name string
}

func (p *noopProtocol) Name() string { return p.name }
func (p *noopProtocol) Init(*InitParams, []byte) (int, ProtoCaps, error) {
	return 0, ProtoCaps{}, ErrNoElem
}
func (p *noopProtocol) ConfigStr([]byte) string { return p.name }

func TestRegisterProtocolAssignsStableIDs(t *testing.T) {
	first := RegisterProtocol(&noopProtocol{name: "test-proto-a"})
	second := RegisterProtocol(&noopProtocol{name: "test-proto-b"})

	if second != first+1 {
		t.Errorf("expected sequential ids, got %d then %d", first, second)
	}

	id, ok := ProtocolByName("test-proto-a")
	if !ok || id != first {
		t.Errorf("ProtocolByName(test-proto-a) = %d, %v; want %d, true", id, ok, first)
	}

	if p := ProtocolByID(first); p == nil || p.Name() != "test-proto-a" {
		t.Errorf("ProtocolByID(%d) = %v, want test-proto-a", first, p)
	}
}

// withEmptyRegistry temporarily clears the package-global protocol
// registry for the duration of fn, restoring it afterwards. Needed
// because RegisterProtocol has no corresponding Unregister: tests that
// care about an empty registry must save and restore it explicitly.
func withEmptyRegistry(t *testing.T, fn func()) {
	t.Helper()
	registryMu.Lock()
	savedRegistry := registry
	savedByName := registryByName
	registry = nil
	registryByName = make(map[string]ProtoID)
	registryMu.Unlock()

	t.Cleanup(func() {
		registryMu.Lock()
		registry = savedRegistry
		registryByName = savedByName
		registryMu.Unlock()
	})

	fn()
}

func TestRegisterProtocolPanicsOnDuplicateName(t *testing.T) {
	RegisterProtocol(&noopProtocol{name: "test-proto-dup"})

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate protocol name")
		}
	}()
	RegisterProtocol(&noopProtocol{name: "test-proto-dup"})
}
