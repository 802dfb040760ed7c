package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/docverify/internal/api"
	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/dmitrijs2005/docverify/internal/logging"
	"github.com/dmitrijs2005/docverify/internal/server/models"
	"github.com/dmitrijs2005/docverify/internal/server/services"
	"github.com/dmitrijs2005/docverify/internal/verification"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ---- fakes ----

type fakeUser struct {
	refreshResp *services.TokenPair
	refreshErr  error

	regResp *models.User
	regErr  error
	regArgs []string

	loginResp *services.TokenPair
	loginErr  error
}

func (f *fakeUser) RefreshToken(ctx context.Context, refresh string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}
func (f *fakeUser) Register(ctx context.Context, username, fullName, email, password string) (*models.User, error) {
	f.regArgs = []string{username, fullName, email, password}
	return f.regResp, f.regErr
}
func (f *fakeUser) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}

type fakeDocs struct {
	createOwner int64
	createResp  *models.Document
	createErr   error

	finalizeResp *services.FinalizeResult
	finalizeErr  error

	stampIn   []byte
	stampResp []byte
	stampErr  error
}

func (f *fakeDocs) Create(ctx context.Context, ownerID int64, title string) (*models.Document, error) {
	f.createOwner = ownerID
	return f.createResp, f.createErr
}
func (f *fakeDocs) Finalize(ctx context.Context, ownerID, documentID int64) (*services.FinalizeResult, error) {
	return f.finalizeResp, f.finalizeErr
}
func (f *fakeDocs) Stamp(ctx context.Context, ownerID, documentID int64, pdf []byte) ([]byte, error) {
	f.stampIn = pdf
	return f.stampResp, f.stampErr
}

type fakeSigs struct {
	signMethod   verification.SignatureMethod
	signPlatform verification.Platform
	signResp     *services.SignResult
	signErr      error

	list    []verification.SignatureRecord
	listErr error
}

func (f *fakeSigs) Sign(ctx context.Context, signerID, documentID int64, method verification.SignatureMethod, platform verification.Platform) (*services.SignResult, error) {
	f.signMethod, f.signPlatform = method, platform
	return f.signResp, f.signErr
}
func (f *fakeSigs) List(ctx context.Context, documentID int64) ([]verification.SignatureRecord, error) {
	return f.list, f.listErr
}

type fakeLookup struct {
	gotCode string
	resp    *models.LookupResult
	err     error
}

func (f *fakeLookup) Lookup(ctx context.Context, code string) (*models.LookupResult, error) {
	f.gotCode = code
	return f.resp, f.err
}

// ---- helpers ----

func newServer(svc Services) *GRPCServer {
	if svc.Users == nil {
		svc.Users = &fakeUser{}
	}
	if svc.Documents == nil {
		svc.Documents = &fakeDocs{}
	}
	if svc.Signatures == nil {
		svc.Signatures = &fakeSigs{}
	}
	if svc.Lookup == nil {
		svc.Lookup = &fakeLookup{}
	}
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, svc, "k")
}

func mustStruct(t *testing.T, v any) *structpb.Struct {
	t.Helper()
	s, err := api.ToStruct(v)
	if err != nil {
		t.Fatalf("ToStruct: %v", err)
	}
	return s
}

func mustDecode(t *testing.T, s *structpb.Struct, v any) {
	t.Helper()
	if err := api.FromStruct(s, v); err != nil {
		t.Fatalf("FromStruct: %v", err)
	}
}

func authed(id int64) context.Context {
	return context.WithValue(context.Background(), userIDKey, id)
}

// ---- tests ----

func TestPing_OK(t *testing.T) {
	s := newServer(Services{})
	resp, err := s.Ping(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if resp.GetValue() != "OK" {
		t.Fatalf("unexpected status: %q", resp.GetValue())
	}
}

func TestRefreshToken_OK(t *testing.T) {
	u := &fakeUser{refreshResp: &services.TokenPair{AccessToken: "a", RefreshToken: "r"}}
	s := newServer(Services{Users: u})
	resp, err := s.RefreshToken(context.Background(), mustStruct(t, api.RefreshTokenRequest{RefreshToken: "r0"}))
	if err != nil {
		t.Fatalf("RefreshToken error: %v", err)
	}
	var out api.TokenPair
	mustDecode(t, resp, &out)
	if out.AccessToken != "a" || out.RefreshToken != "r" {
		t.Fatalf("unexpected tokens: %+v", out)
	}
}

func TestRefreshToken_Errors(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
		msg  string
	}{
		{errors.New("oops"), codes.Internal, "internal error"},
		{common.ErrorUnauthorized, codes.Unauthenticated, "unauthorized"},
		{common.ErrRefreshTokenExpired, codes.Unauthenticated, "refresh token expired"},
	}
	for _, tt := range tests {
		s := newServer(Services{Users: &fakeUser{refreshErr: tt.err}})
		_, err := s.RefreshToken(context.Background(), mustStruct(t, api.RefreshTokenRequest{RefreshToken: "r0"}))
		if status.Code(err) != tt.code || status.Convert(err).Message() != tt.msg {
			t.Fatalf("%v: got %v %q", tt.err, status.Code(err), status.Convert(err).Message())
		}
	}
}

func TestRegister_OK(t *testing.T) {
	u := &fakeUser{regResp: &models.User{ID: 42, UserName: "ana"}}
	s := newServer(Services{Users: u})
	resp, err := s.Register(context.Background(), mustStruct(t, api.RegisterRequest{
		Username: "ana", FullName: "Ana Pérez", Email: "ana@example.com", Password: "s3cret-pass",
	}))
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	var out api.RegisterResponse
	mustDecode(t, resp, &out)
	if out.UserID != 42 || out.Username != "ana" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if u.regArgs[1] != "Ana Pérez" || u.regArgs[3] != "s3cret-pass" {
		t.Fatalf("args not forwarded: %v", u.regArgs)
	}
}

func TestRegister_ErrorMapping(t *testing.T) {
	s := newServer(Services{Users: &fakeUser{regErr: fmt.Errorf("error creating user: %w", common.ErrorAlreadyExists)}})
	_, err := s.Register(context.Background(), mustStruct(t, api.RegisterRequest{Username: "u"}))
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("want AlreadyExists, got %v", status.Code(err))
	}

	s = newServer(Services{Users: &fakeUser{regErr: fmt.Errorf("%w: password too short", common.ErrInvalidArgument)}})
	_, err = s.Register(context.Background(), mustStruct(t, api.RegisterRequest{Username: "u"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "invalid argument: password too short" {
		t.Fatalf("unexpected message: %q", status.Convert(err).Message())
	}
}

func TestRegister_MalformedRequest(t *testing.T) {
	s := newServer(Services{})
	req, _ := structpb.NewStruct(map[string]any{"username": 12})
	_, err := s.Register(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", status.Code(err))
	}
}

func TestLogin_OK(t *testing.T) {
	u := &fakeUser{loginResp: &services.TokenPair{AccessToken: "A", RefreshToken: "R"}}
	s := newServer(Services{Users: u})
	resp, err := s.Login(context.Background(), mustStruct(t, api.LoginRequest{Username: "u", Password: "p"}))
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	var out api.TokenPair
	mustDecode(t, resp, &out)
	if out.AccessToken != "A" || out.RefreshToken != "R" {
		t.Fatalf("unexpected tokens: %+v", out)
	}
}

func TestLogin_UnauthorizedAndInternal(t *testing.T) {
	s := newServer(Services{Users: &fakeUser{loginErr: common.ErrorUnauthorized}})
	_, err := s.Login(context.Background(), mustStruct(t, api.LoginRequest{Username: "u", Password: "x"}))
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("want Unauthenticated, got %v", status.Code(err))
	}

	s2 := newServer(Services{Users: &fakeUser{loginErr: errors.New("boom")}})
	_, err = s2.Login(context.Background(), mustStruct(t, api.LoginRequest{Username: "u", Password: "x"}))
	if status.Code(err) != codes.Internal {
		t.Fatalf("want Internal, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "internal error" {
		t.Fatalf("internal details leaked: %q", status.Convert(err).Message())
	}
}

func TestCreateDocument_UsesCallerID(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	d := &fakeDocs{createResp: &models.Document{ID: 7, OwnerID: 5, Title: "Contrato", Status: models.DocumentPending, CreatedAt: created}}
	s := newServer(Services{Documents: d})

	resp, err := s.CreateDocument(authed(5), mustStruct(t, api.CreateDocumentRequest{Title: "Contrato"}))
	if err != nil {
		t.Fatalf("CreateDocument error: %v", err)
	}
	if d.createOwner != 5 {
		t.Fatalf("owner = %d, want 5", d.createOwner)
	}
	var out api.Document
	mustDecode(t, resp, &out)
	if out.ID != 7 || out.Status != "pending" || !out.CreatedAt.Equal(created) {
		t.Fatalf("unexpected document: %+v", out)
	}
}

func TestProtectedHandlers_RequireUser(t *testing.T) {
	s := newServer(Services{})
	req := mustStruct(t, api.DocumentRequest{DocumentID: 1})
	calls := map[string]func(context.Context, *structpb.Struct) (*structpb.Struct, error){
		"create":   s.CreateDocument,
		"finalize": s.FinalizeDocument,
		"sign":     s.SignDocument,
		"stamp":    s.StampDocument,
		"list":     s.ListSignatures,
	}
	for name, call := range calls {
		if _, err := call(context.Background(), req); status.Code(err) != codes.Unauthenticated {
			t.Fatalf("%s: want Unauthenticated, got %v", name, status.Code(err))
		}
	}
}

func TestFinalizeDocument_OK(t *testing.T) {
	d := &fakeDocs{finalizeResp: &services.FinalizeResult{
		Document:        &models.Document{ID: 9},
		Record:          &models.VerificationRecord{DocumentID: 9, Code: "AB-CDEF-12"},
		VerificationURL: "http://localhost:8080/verificar-documento/AB-CDEF-12",
		QRSVG:           "<svg/>",
		QRURL:           "https://s3.example/qr",
	}}
	s := newServer(Services{Documents: d})

	resp, err := s.FinalizeDocument(authed(1), mustStruct(t, api.DocumentRequest{DocumentID: 9}))
	if err != nil {
		t.Fatalf("FinalizeDocument error: %v", err)
	}
	var out api.FinalizeResponse
	mustDecode(t, resp, &out)
	if out.Code != "AB-CDEF-12" || out.DocumentID != 9 || out.QRURL != "https://s3.example/qr" || out.QRSVG != "<svg/>" {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestFinalizeDocument_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{common.ErrorNotFound, codes.NotFound},
		{common.ErrorForbidden, codes.PermissionDenied},
		{fmt.Errorf("%w: document is signed", common.ErrInvalidArgument), codes.InvalidArgument},
		{common.ErrCodeSpaceExhausted, codes.ResourceExhausted},
		{errors.New("db error: boom"), codes.Internal},
	}
	for _, tt := range tests {
		s := newServer(Services{Documents: &fakeDocs{finalizeErr: tt.err}})
		_, err := s.FinalizeDocument(authed(1), mustStruct(t, api.DocumentRequest{DocumentID: 1}))
		if status.Code(err) != tt.code {
			t.Fatalf("%v: want %v, got %v", tt.err, tt.code, status.Code(err))
		}
	}
}

func TestSignDocument_OK(t *testing.T) {
	ts := time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC)
	sg := &fakeSigs{signResp: &services.SignResult{
		Record: &verification.SignatureRecord{ID: 3, SignerID: 2, DocumentID: 9, Timestamp: ts, VerificationCode: "AB-CDEF-12",
			Method: verification.MethodAdvanced, Platform: verification.PlatformMobile, Verified: true},
		Block:    "<div>block</div>",
		BlockURL: "https://s3.example/block",
	}}
	s := newServer(Services{Signatures: sg})

	resp, err := s.SignDocument(authed(2), mustStruct(t, api.SignRequest{DocumentID: 9, Method: "advanced", Platform: "mobile"}))
	if err != nil {
		t.Fatalf("SignDocument error: %v", err)
	}
	if sg.signMethod != verification.MethodAdvanced || sg.signPlatform != verification.PlatformMobile {
		t.Fatalf("enums not forwarded: %q %q", sg.signMethod, sg.signPlatform)
	}
	var out api.SignResponse
	mustDecode(t, resp, &out)
	if out.Signature.ID != 3 || !out.Signature.Verified || out.Block != "<div>block</div>" || !out.Signature.Timestamp.Equal(ts) {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestSignDocument_NotFinalized(t *testing.T) {
	s := newServer(Services{Signatures: &fakeSigs{signErr: common.ErrDocumentNotFinalized}})
	_, err := s.SignDocument(authed(2), mustStruct(t, api.SignRequest{DocumentID: 9, Method: "simple", Platform: "web"}))
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("want FailedPrecondition, got %v", status.Code(err))
	}
}

func TestSignDocument_RejectsUnknownEnums(t *testing.T) {
	tests := []struct {
		name string
		req  api.SignRequest
		want string
	}{
		{"method", api.SignRequest{DocumentID: 9, Method: "biometric", Platform: "web"}, `unknown signature method "biometric"`},
		{"platform", api.SignRequest{DocumentID: 9, Method: "simple", Platform: "kiosk"}, `unknown platform "kiosk"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sg := &fakeSigs{}
			s := newServer(Services{Signatures: sg})

			_, err := s.SignDocument(authed(2), mustStruct(t, tt.req))
			st, _ := status.FromError(err)
			if st.Code() != codes.InvalidArgument {
				t.Fatalf("want InvalidArgument, got %v", st.Code())
			}
			if st.Message() != "invalid argument: "+tt.want {
				t.Fatalf("unexpected message %q", st.Message())
			}
			if sg.signMethod != "" || sg.signPlatform != "" {
				t.Fatal("service must not be called for unknown enums")
			}
		})
	}
}

func TestStampDocument_OK(t *testing.T) {
	d := &fakeDocs{stampResp: []byte("%PDF-stamped")}
	s := newServer(Services{Documents: d})

	resp, err := s.StampDocument(authed(1), mustStruct(t, api.StampRequest{DocumentID: 9, PDF: []byte("%PDF-in")}))
	if err != nil {
		t.Fatalf("StampDocument error: %v", err)
	}
	if string(d.stampIn) != "%PDF-in" {
		t.Fatalf("pdf not forwarded: %q", d.stampIn)
	}
	var out api.StampResponse
	mustDecode(t, resp, &out)
	if string(out.PDF) != "%PDF-stamped" {
		t.Fatalf("unexpected pdf: %q", out.PDF)
	}
}

func TestListSignatures_OK(t *testing.T) {
	sg := &fakeSigs{list: []verification.SignatureRecord{{ID: 1}, {ID: 2}}}
	s := newServer(Services{Signatures: sg})

	resp, err := s.ListSignatures(authed(1), mustStruct(t, api.DocumentRequest{DocumentID: 9}))
	if err != nil {
		t.Fatalf("ListSignatures error: %v", err)
	}
	var out api.ListSignaturesResponse
	mustDecode(t, resp, &out)
	if len(out.Signatures) != 2 || out.Signatures[1].ID != 2 {
		t.Fatalf("unexpected list: %+v", out)
	}
}

func TestLookupCode(t *testing.T) {
	ts := time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC)
	l := &fakeLookup{resp: &models.LookupResult{Verified: true, DocumentInfo: &models.DocumentInfo{
		Title: "Contrato", SignerName: "Ana Pérez", SignatureTimestamp: &ts,
	}}}
	s := newServer(Services{Lookup: l})

	resp, err := s.LookupCode(context.Background(), mustStruct(t, api.LookupRequest{Code: "AB-CDEF-12"}))
	if err != nil {
		t.Fatalf("LookupCode error: %v", err)
	}
	if l.gotCode != "AB-CDEF-12" {
		t.Fatalf("code not forwarded: %q", l.gotCode)
	}
	var out api.LookupResponse
	mustDecode(t, resp, &out)
	if !out.Verified || out.DocumentInfo == nil || out.DocumentInfo.SignerName != "Ana Pérez" || !out.DocumentInfo.SignatureTimestamp.Equal(ts) {
		t.Fatalf("unexpected lookup: %+v", out)
	}
}

func TestLookupCode_Unverified(t *testing.T) {
	s := newServer(Services{Lookup: &fakeLookup{resp: &models.LookupResult{}}})
	resp, err := s.LookupCode(context.Background(), mustStruct(t, api.LookupRequest{Code: "nope"}))
	if err != nil {
		t.Fatalf("LookupCode error: %v", err)
	}
	if _, ok := resp.Fields["documentInfo"]; ok {
		t.Fatal("documentInfo must be omitted for unverified codes")
	}
	if resp.Fields["verified"].GetBoolValue() {
		t.Fatal("verified must be false")
	}
}
