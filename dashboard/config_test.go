package main

import (
	"strings"
	"testing"

	"github.com/gilbertoneto04/betmanagerpro/schema"
)

func TestSeedDefaultConfig(t *testing.T) {
	svc := newTestSvc(t)

	houses, err := svc.listHouses()
	if err != nil {
		t.Fatalf("listHouses: %s", err)
	}
	if len(houses) != len(schema.DefaultHouses) {
		t.Fatalf("expected %d seeded houses, got %d", len(schema.DefaultHouses), len(houses))
	}
	if houses[0].Name != schema.DefaultHouses[0] {
		t.Errorf("houses should come back in seed order, got %s first", houses[0].Name)
	}

	types, err := svc.listTaskTypes()
	if err != nil {
		t.Fatalf("listTaskTypes: %s", err)
	}
	if len(types) != len(schema.DefaultTaskTypes) {
		t.Fatalf("expected %d seeded task types, got %d", len(schema.DefaultTaskTypes), len(types))
	}

	// seeding twice must not duplicate
	seedDefaultConfig(svc.db)
	if n := countRows(t, svc.db, &House{}); n != int64(len(schema.DefaultHouses)) {
		t.Errorf("reseeding a populated table must be a no-op, got %d houses", n)
	}
}

func TestReorderHouses(t *testing.T) {
	svc := newTestSvc(t)

	sequence := []string{"KTO", "Stake", "Bet365", "Betano", "Novibet", "EstrelaBet", "Outra"}
	if err := svc.reorderHouses(sequence); err != nil {
		t.Fatalf("reorderHouses: %s", err)
	}
	houses, _ := svc.listHouses()
	for idx, name := range sequence {
		if houses[idx].Name != name {
			t.Errorf("position %d: expected %s, got %s", idx, name, houses[idx].Name)
		}
	}

	// unknown names are skipped without error
	if err := svc.reorderHouses([]string{"Inexistente", "KTO"}); err != nil {
		t.Fatalf("reorder with unknown name: %s", err)
	}
}

func TestRestoreDefaultsIsDestructive(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()

	svc.db.Create(&House{Name: "Casa Custom", Order: 99})
	svc.db.Create(&TaskTypeConfig{Label: "Custom", Value: "CUSTOM", Order: 99})

	if err := svc.restoreDefaults(admin); err != nil {
		t.Fatalf("restoreDefaults: %s", err)
	}

	houses, _ := svc.listHouses()
	if len(houses) != len(schema.DefaultHouses) {
		t.Fatalf("expected exactly the default houses back, got %d", len(houses))
	}
	for _, h := range houses {
		if h.Name == "Casa Custom" {
			t.Errorf("custom house must not survive a restore")
		}
	}
	types, _ := svc.listTaskTypes()
	if len(types) != len(schema.DefaultTaskTypes) {
		t.Fatalf("expected exactly the default task types back, got %d", len(types))
	}
}

func TestPixKeyLifecycle(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()

	_, err := svc.addPixKey(admin, PixKey{Name: "João", Bank: "Nubank", KeyType: "EMAIL"})
	if !IsValidation(err) {
		t.Fatalf("pix key without key value should fail validation, got %v", err)
	}
	_, err = svc.addPixKey(admin, PixKey{Name: "João", Bank: "Nubank", KeyType: "telepathy", Key: "x"})
	if !IsValidation(err) {
		t.Fatalf("unknown key type should fail validation, got %v", err)
	}

	key, err := svc.addPixKey(admin, PixKey{Name: "João", Bank: "Nubank", KeyType: "EMAIL", Key: "joao@x.com"})
	if err != nil {
		t.Fatalf("addPixKey: %s", err)
	}

	keys, _ := svc.listPixKeys()
	if len(keys) != 1 {
		t.Fatalf("expected one stored key, got %d", len(keys))
	}

	if err := svc.removePixKey(admin, key.PublicId); err != nil {
		t.Fatalf("removePixKey: %s", err)
	}
	keys, _ = svc.listPixKeys()
	if len(keys) != 0 {
		t.Fatalf("removed key must not come back, got %d", len(keys))
	}
}

func TestSetDefaultPixKey(t *testing.T) {
	svc := newTestSvc(t)
	actor := userActor()
	svc.db.Create(actor)

	key, _ := svc.addPixKey(actor, PixKey{Name: "Maria", Bank: "Itaú", KeyType: "CPF", Key: "123"})
	if err := svc.setDefaultPixKey(actor, key.PublicId); err != nil {
		t.Fatalf("setDefaultPixKey: %s", err)
	}

	var fromDb User
	svc.db.First(&fromDb, "public_id = ?", actor.PublicId)
	if fromDb.DefaultPixKeyId != key.PublicId {
		t.Errorf("default pix key should stick to the user, got %q", fromDb.DefaultPixKeyId)
	}
}

func TestUpdateUserRole(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()

	target := User{PublicId: "u-1", Login: "worker", Name: "Worker", RoleID: schema.RoleUser}
	svc.db.Create(&target)

	if err := svc.updateUserRole(admin, target.PublicId, schema.UserRole(42)); !IsValidation(err) {
		t.Fatalf("out-of-range role should fail validation, got %v", err)
	}

	if err := svc.updateUserRole(admin, target.PublicId, schema.RoleKFB); err != nil {
		t.Fatalf("updateUserRole: %s", err)
	}
	var fromDb User
	svc.db.First(&fromDb, "public_id = ?", target.PublicId)
	if fromDb.RoleID != schema.RoleKFB {
		t.Errorf("role should change to KFB, got %s", fromDb.RoleID)
	}
	if !strings.Contains(lastLogAction(t, svc.db), schema.RoleKFB.String()) {
		t.Errorf("role change log should name the new role")
	}

	// unknown user is a silent no-op
	if err := svc.updateUserRole(admin, "ghost", schema.RoleUser); err != nil {
		t.Fatalf("stale user id must be a no-op, got %s", err)
	}
}

func TestClearOperationalData(t *testing.T) {
	svc := newTestSvc(t)
	admin := adminActor()

	// spread rows across collections, crossing the batch size in one of them
	for i := 0; i < wipeBatchSize+20; i++ {
		svc.db.Create(&Task{Type: schema.TypeSMS, House: "Bet365", AccountName: "x", Status: schema.TaskPending})
	}
	svc.saveAccount(admin, Account{Name: "acc", House: "Bet365", Email: "a@x.com", Status: schema.AccountActive}, "")
	svc.createPack(admin, "Bet365", 3, 100)
	svc.addPixKey(admin, PixKey{Name: "N", Bank: "B", KeyType: "EMAIL", Key: "n@x.com"})
	logsBefore := countRows(t, svc.db, &LogEntry{})

	expected := int64(wipeBatchSize+20) + 1 + 1 + 1 + logsBefore
	total, err := svc.clearOperationalData()
	if err != nil {
		t.Fatalf("clearOperationalData: %s", err)
	}
	if total != expected {
		t.Errorf("expected %d documents removed, got %d", expected, total)
	}

	for _, model := range []interface{}{&Task{}, &Account{}, &Pack{}, &LogEntry{}, &PixKey{}} {
		if n := countRows(t, svc.db, model); n != 0 {
			t.Errorf("%T should be empty after wipe, found %d rows", model, n)
		}
	}

	// config collections survive the wipe
	if n := countRows(t, svc.db, &House{}); n != int64(len(schema.DefaultHouses)) {
		t.Errorf("houses must survive the operational wipe, got %d", n)
	}
}

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		action string
		role   schema.UserRole
		want   bool
	}{
		{actAccountHardDelete, schema.RoleAdmin, true},
		{actAccountHardDelete, schema.RoleUser, false},
		{actConfigWipe, schema.RoleKFB, false},
		{actConfigWipe, schema.RoleAdmin, true},
		{actUserRole, schema.RoleAgency, false},
		{actTaskCreate, schema.RoleAgency, true},
		{actTaskCreate, schema.RoleUser, true},
	}
	for _, tc := range cases {
		if got := allowed(tc.action, tc.role); got != tc.want {
			t.Errorf("allowed(%s, %s) = %v, want %v", tc.action, tc.role, got, tc.want)
		}
	}
}
