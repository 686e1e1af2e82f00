package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/identification/identity-service/internal/core/domain"
)

func newIdentitySvc(creds *recordingCredentials, roles *recordingRoles) *IdentityService {
	issuer := NewTokenIssuer(testSigning, creds)
	return NewIdentityService(creds, roles, issuer, zerolog.Nop())
}

func TestIdentityService_CreateAccount_Success(t *testing.T) {
	creds := newRecordingCredentials()
	svc := newIdentitySvc(creds, newRecordingRoles("Admin", "Operator"))

	acc, err := svc.CreateAccount(context.Background(), "Alice", "Secret123!", []string{"Admin", "Operator"})
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	if acc.Username != "Alice" {
		t.Fatalf("expected username as supplied, got %q", acc.Username)
	}
	if acc.NormalizedUsername != "ALICE" {
		t.Fatalf("unexpected canonical username %q", acc.NormalizedUsername)
	}

	stored, _ := creds.RolesOf(context.Background(), acc)
	sort.Strings(stored)
	if len(stored) != 2 || stored[0] != "Admin" || stored[1] != "Operator" {
		t.Fatalf("unexpected stored roles %v", stored)
	}
}

func TestIdentityService_BlankInputsNeverReachStore(t *testing.T) {
	ctx := context.Background()
	blanks := []string{"", "   ", "\t\n"}

	for _, blank := range blanks {
		creds := newRecordingCredentials()
		roles := newRecordingRoles("Admin")
		svc := newIdentitySvc(creds, roles)

		checks := map[string]error{}
		_, checks["create/username"] = svc.CreateAccount(ctx, blank, "Secret123!", []string{"Admin"})
		_, checks["create/password"] = svc.CreateAccount(ctx, "alice", blank, []string{"Admin"})
		_, checks["login/username"] = svc.Login(ctx, blank, "Secret123!")
		_, checks["login/password"] = svc.Login(ctx, "alice", blank)
		_, checks["assign/username"] = svc.AssignRoles(ctx, blank, []string{"Admin"})
		_, checks["role/name"] = svc.CreateRole(ctx, blank)

		for name, err := range checks {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("%s with %q: expected ValidationError, got %v", name, blank, err)
			}
		}
		if creds.calls != 0 || roles.calls != 0 {
			t.Fatalf("expected zero store calls, got credentials=%d roles=%d", creds.calls, roles.calls)
		}
	}
}

func TestIdentityService_EmptyRoleListRejected(t *testing.T) {
	creds := newRecordingCredentials()
	svc := newIdentitySvc(creds, newRecordingRoles())

	for _, roles := range [][]string{nil, {}} {
		_, err := svc.CreateAccount(context.Background(), "alice", "Secret123!", roles)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Reason != "roles cannot be empty" {
			t.Fatalf("expected roles validation error, got %v", err)
		}
	}
	if creds.calls != 0 {
		t.Fatalf("expected zero store calls, got %d", creds.calls)
	}
}

func TestIdentityService_CreateAccount_DuplicateSurfacesStoreDetail(t *testing.T) {
	creds := newRecordingCredentials()
	svc := newIdentitySvc(creds, newRecordingRoles("Admin"))
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, "alice", "Secret123!", []string{"Admin"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateAccount(ctx, "ALICE", "Secret123!", []string{"Admin"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Error() != "username 'ALICE' is already taken" {
		t.Fatalf("unexpected message %q", verr.Error())
	}
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected error to wrap ErrAccountExists")
	}
}

func TestIdentityService_CreateAccount_BackendFailureIsNotValidation(t *testing.T) {
	creds := newRecordingCredentials()
	creds.createErr = errBackend
	svc := newIdentitySvc(creds, newRecordingRoles("Admin"))

	_, err := svc.CreateAccount(context.Background(), "alice", "Secret123!", []string{"Admin"})
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		t.Fatalf("backend failure must not be reported as validation: %v", err)
	}
	if !errors.Is(err, errBackend) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestIdentityService_CreateAccount_OrphanedOnAttachFailure(t *testing.T) {
	creds := newRecordingCredentials()
	creds.attachErr = domain.NewStoreRejection(domain.ErrRoleNotFound, "role 'Ghost' does not exist")
	svc := newIdentitySvc(creds, newRecordingRoles())

	_, err := svc.CreateAccount(context.Background(), "alice", "Secret123!", []string{"Ghost"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Error() != "role 'Ghost' does not exist" {
		t.Fatalf("unexpected message %q", verr.Error())
	}
	if !errors.Is(err, domain.ErrOrphanedAccount) {
		t.Fatalf("expected error to wrap ErrOrphanedAccount")
	}
	if _, ok := creds.accounts["ALICE"]; !ok {
		t.Fatalf("account must not be rolled back")
	}
}

func TestIdentityService_CreateRole(t *testing.T) {
	roles := newRecordingRoles()
	svc := newIdentitySvc(newRecordingCredentials(), roles)

	role, err := svc.CreateRole(context.Background(), "Admin")
	if err != nil {
		t.Fatalf("CreateRole returned error: %v", err)
	}
	if role.Name != "Admin" || role.NormalizedName != "ADMIN" {
		t.Fatalf("unexpected role %+v", role)
	}
}

func TestIdentityService_CreateRole_FailureIsGeneric(t *testing.T) {
	roles := newRecordingRoles()
	roles.createErr = errors.New("duplicate key value violates unique constraint")
	svc := newIdentitySvc(newRecordingCredentials(), roles)

	_, err := svc.CreateRole(context.Background(), "Admin")
	var operr *domain.OperationError
	if !errors.As(err, &operr) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if err.Error() != "an error occurred during role creation" {
		t.Fatalf("store detail leaked: %q", err.Error())
	}
	if !errors.Is(err, roles.createErr) {
		t.Fatalf("cause should stay reachable for logging")
	}
}

func TestIdentityService_AssignRoles_UnknownAccount(t *testing.T) {
	creds := newRecordingCredentials()
	roles := newRecordingRoles("Admin")
	svc := newIdentitySvc(creds, roles)

	ok, err := svc.AssignRoles(context.Background(), "ghost", []string{"Admin"})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if ok {
		t.Fatalf("expected false")
	}
	if len(creds.accounts) != 0 {
		t.Fatalf("no account may be created implicitly")
	}
	if roles.calls != 0 {
		t.Fatalf("expected no role store calls, got %d", roles.calls)
	}
}

func TestIdentityService_AssignRoles_UnknownRoleAttachesNothing(t *testing.T) {
	ctx := context.Background()
	creds := newRecordingCredentials()
	svc := newIdentitySvc(creds, newRecordingRoles("Admin", "Operator"))
	if _, err := svc.CreateAccount(ctx, "alice", "Secret123!", []string{"Operator"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := svc.AssignRoles(ctx, "alice", []string{"Admin", "Ghost"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Reason != "unknown roles: Ghost" {
		t.Fatalf("expected unknown roles error, got %v", err)
	}
	if ok {
		t.Fatalf("expected false")
	}
	if got := creds.accounts["ALICE"].roles; len(got) != 1 || got[0] != "Operator" {
		t.Fatalf("roles must be unchanged, got %v", got)
	}
}

func TestIdentityService_AssignRoles_Success(t *testing.T) {
	ctx := context.Background()
	creds := newRecordingCredentials()
	svc := newIdentitySvc(creds, newRecordingRoles("Admin", "Operator"))
	_, _ = svc.CreateAccount(ctx, "alice", "Secret123!", []string{"Operator"})

	ok, err := svc.AssignRoles(ctx, "ALICE", []string{"Admin"})
	if err != nil || !ok {
		t.Fatalf("expected success, got %v %v", ok, err)
	}
}

func TestIdentityService_AssignRoles_StoreFailureReportsFalse(t *testing.T) {
	ctx := context.Background()
	creds := newRecordingCredentials()
	svc := newIdentitySvc(creds, newRecordingRoles("Admin"))
	_, _ = svc.CreateAccount(ctx, "alice", "Secret123!", []string{"Admin"})
	creds.attachErr = errBackend

	ok, err := svc.AssignRoles(ctx, "alice", []string{"Admin"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if ok {
		t.Fatalf("expected false")
	}
}

func TestIdentityService_Login_ErrorsAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	creds := newRecordingCredentials()
	svc := newIdentitySvc(creds, newRecordingRoles("Admin"))
	_, _ = svc.CreateAccount(ctx, "alice", "Secret123!", []string{"Admin"})

	_, unknownErr := svc.Login(ctx, "nobody", "Secret123!")
	_, wrongErr := svc.Login(ctx, "alice", "WrongPass")

	var a1, a2 *domain.AuthenticationError
	if !errors.As(unknownErr, &a1) || !errors.As(wrongErr, &a2) {
		t.Fatalf("expected AuthenticationError for both, got %v / %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("messages differ: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}

func TestIdentityService_Login_BackendFailurePropagates(t *testing.T) {
	creds := newRecordingCredentials()
	creds.findErr = errBackend
	svc := newIdentitySvc(creds, newRecordingRoles())

	_, err := svc.Login(context.Background(), "alice", "Secret123!")
	var aerr *domain.AuthenticationError
	if errors.As(err, &aerr) {
		t.Fatalf("backend failure must not look like bad credentials")
	}
	if !errors.Is(err, errBackend) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestIdentityService_Login_MissingSecret(t *testing.T) {
	ctx := context.Background()
	creds := newRecordingCredentials()
	issuer := NewTokenIssuer(staticSigning{Issuer: "identity", Audience: "services"}, creds)
	svc := NewIdentityService(creds, newRecordingRoles("Admin"), issuer, zerolog.Nop())
	_, _ = svc.CreateAccount(ctx, "alice", "Secret123!", []string{"Admin"})

	_, err := svc.Login(ctx, "alice", "Secret123!")
	var cerr *domain.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestIdentityService_CreateAccount_ReturnsDistinctRoles(t *testing.T) {
	creds := newRecordingCredentials()
	svc := newIdentitySvc(creds, newRecordingRoles("Admin"))

	acc, err := svc.CreateAccount(context.Background(), "alice", "Secret123!", []string{"Admin", " admin "})
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	if len(acc.Roles) != 1 || acc.Roles[0] != "Admin" {
		t.Fatalf("expected [Admin], got %v", acc.Roles)
	}
}
