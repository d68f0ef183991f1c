package systems

import (
	"testing"

	"github.com/decker502/shooter/pkg/components"
	"github.com/decker502/shooter/pkg/ecs"
	"github.com/decker502/shooter/pkg/utils"
)

func TestHitLabelSystem_ProjectsAndExpires(t *testing.T) {
	em := ecs.NewEntityManager()
	s := NewHitLabelSystem(em, &fakeWorld{})

	id := em.CreateEntity()
	em.AddComponent(id, &components.HitLabelComponent{Damage: 20, Location: utils.Vec3{X: 120, Y: 80}})
	em.AddComponent(id, &components.LifetimeComponent{MaxLifetime: 1.0})

	s.Update(0.5)
	label, _ := ecs.GetComponent[*components.HitLabelComponent](em, id)
	if !label.OnScreen || label.ScreenX != 120 || label.ScreenY != 80 {
		t.Errorf("unexpected projection %+v", label)
	}
	if em.IsMarkedForDestroy(id) {
		t.Fatal("label should still be alive")
	}

	s.Update(0.5)
	if !em.IsMarkedForDestroy(id) {
		t.Error("label should expire after its lifetime")
	}
	em.RemoveMarkedEntities()
	if em.Exists(id) {
		t.Error("expired label should be removed")
	}
}

func TestHitLabelSystem_NilWorld(t *testing.T) {
	em := ecs.NewEntityManager()
	s := NewHitLabelSystem(em, nil)

	id := em.CreateEntity()
	em.AddComponent(id, &components.HitLabelComponent{})
	em.AddComponent(id, &components.LifetimeComponent{MaxLifetime: 0.2})

	s.Update(0.1)
	label, _ := ecs.GetComponent[*components.HitLabelComponent](em, id)
	if label.OnScreen {
		t.Error("label cannot be on screen without a world query")
	}
}
