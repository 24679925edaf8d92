package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"condo-portal/internal/models"
	"condo-portal/internal/push"
	"condo-portal/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id int) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var created models.User
	if val := args.Get(0); val != nil {
		created = val.(models.User)
	}
	return created, args.Error(1)
}

func (m *UserRepositoryMock) DeleteUser(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepositoryMock) ListUsersByRoles(ctx context.Context, roles ...string) ([]models.User, error) {
	callArgs := make([]any, 0, len(roles)+1)
	callArgs = append(callArgs, ctx)
	for _, role := range roles {
		callArgs = append(callArgs, role)
	}
	args := m.Called(callArgs...)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) CountByRole(ctx context.Context, role string) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

func (m *UserRepositoryMock) ListPendingManagers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) ApproveUser(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepositoryMock) SetResetToken(ctx context.Context, id int, token string, expires time.Time) error {
	args := m.Called(ctx, id, token, expires)
	return args.Error(0)
}

func (m *UserRepositoryMock) SetPassword(ctx context.Context, email, passwordHash string, clearToken bool) error {
	args := m.Called(ctx, email, passwordHash, clearToken)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetUserForReset(ctx context.Context, email, token string) (models.User, error) {
	args := m.Called(ctx, email, token)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetFirstAccessUser(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) ListManagers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) ListReachableByUnits(ctx context.Context, unitIDs []int) ([]models.User, error) {
	args := m.Called(ctx, unitIDs)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) IncrementUnread(ctx context.Context, userIDs []int) (int, error) {
	args := m.Called(ctx, userIDs)
	return args.Int(0), args.Error(1)
}

func (m *UserRepositoryMock) ResetUnread(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *UserRepositoryMock) UnreadCount(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type UnitRepositoryMock struct {
	mock.Mock
}

func (m *UnitRepositoryMock) GetUnit(ctx context.Context, id int) (models.Unit, error) {
	args := m.Called(ctx, id)
	var unit models.Unit
	if val := args.Get(0); val != nil {
		unit = val.(models.Unit)
	}
	return unit, args.Error(1)
}

func (m *UnitRepositoryMock) ListUnits(ctx context.Context) ([]models.Unit, error) {
	args := m.Called(ctx)
	var units []models.Unit
	if val := args.Get(0); val != nil {
		units = val.([]models.Unit)
	}
	return units, args.Error(1)
}

func (m *UnitRepositoryMock) ListUnitsByIDs(ctx context.Context, ids []int) ([]models.Unit, error) {
	args := m.Called(ctx, ids)
	var units []models.Unit
	if val := args.Get(0); val != nil {
		units = val.([]models.Unit)
	}
	return units, args.Error(1)
}

func (m *UnitRepositoryMock) CreateUnit(ctx context.Context, name string) (models.Unit, error) {
	args := m.Called(ctx, name)
	var unit models.Unit
	if val := args.Get(0); val != nil {
		unit = val.(models.Unit)
	}
	return unit, args.Error(1)
}

func (m *UnitRepositoryMock) CountUnitsNamed(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *UnitRepositoryMock) RenameUnit(ctx context.Context, id int, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *UnitRepositoryMock) DeleteUnit(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type BlockRepositoryMock struct {
	mock.Mock
}

func (m *BlockRepositoryMock) ListBlocks(ctx context.Context) ([]models.Block, error) {
	args := m.Called(ctx)
	var blocks []models.Block
	if val := args.Get(0); val != nil {
		blocks = val.([]models.Block)
	}
	return blocks, args.Error(1)
}

func (m *BlockRepositoryMock) CreateBlock(ctx context.Context, name string) (models.Block, error) {
	args := m.Called(ctx, name)
	var block models.Block
	if val := args.Get(0); val != nil {
		block = val.(models.Block)
	}
	return block, args.Error(1)
}

func (m *BlockRepositoryMock) RenameBlock(ctx context.Context, id int, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *BlockRepositoryMock) DeleteBlock(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *BlockRepositoryMock) ListSubblocks(ctx context.Context) ([]models.Subblock, error) {
	args := m.Called(ctx)
	var subblocks []models.Subblock
	if val := args.Get(0); val != nil {
		subblocks = val.([]models.Subblock)
	}
	return subblocks, args.Error(1)
}

func (m *BlockRepositoryMock) CreateSubblock(ctx context.Context, name string, blockID int) (models.Subblock, error) {
	args := m.Called(ctx, name, blockID)
	var subblock models.Subblock
	if val := args.Get(0); val != nil {
		subblock = val.(models.Subblock)
	}
	return subblock, args.Error(1)
}

func (m *BlockRepositoryMock) UpdateSubblock(ctx context.Context, id int, name string, blockID int) error {
	args := m.Called(ctx, id, name, blockID)
	return args.Error(0)
}

func (m *BlockRepositoryMock) DeleteSubblock(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, blockID, subblockID int, unitIDs []int) (models.Group, error) {
	args := m.Called(ctx, blockID, subblockID, unitIDs)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, id int) (models.Group, error) {
	args := m.Called(ctx, id)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroups(ctx context.Context) ([]models.Group, error) {
	args := m.Called(ctx)
	var groups []models.Group
	if val := args.Get(0); val != nil {
		groups = val.([]models.Group)
	}
	return groups, args.Error(1)
}

func (m *GroupRepositoryMock) DeleteGroup(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateQuickMessage(ctx context.Context, sender, body string, templateKindID, templateID int, dest models.Destination, window models.ValidityWindow) (int, error) {
	args := m.Called(ctx, sender, body, templateKindID, templateID, dest, window)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) CreateConventionalMessage(ctx context.Context, sender, subject, body string, dest models.Destination, window models.ValidityWindow) (int, error) {
	args := m.Called(ctx, sender, subject, body, dest, window)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) ListAllActive(ctx context.Context) ([]models.MessageView, error) {
	args := m.Called(ctx)
	var views []models.MessageView
	if val := args.Get(0); val != nil {
		views = val.([]models.MessageView)
	}
	return views, args.Error(1)
}

func (m *MessageRepositoryMock) ListActiveForMessenger(ctx context.Context) ([]models.MessageView, error) {
	args := m.Called(ctx)
	var views []models.MessageView
	if val := args.Get(0); val != nil {
		views = val.([]models.MessageView)
	}
	return views, args.Error(1)
}

func (m *MessageRepositoryMock) ListActiveForResident(ctx context.Context, unitID int, senderName string) ([]models.MessageView, error) {
	args := m.Called(ctx, unitID, senderName)
	var views []models.MessageView
	if val := args.Get(0); val != nil {
		views = val.([]models.MessageView)
	}
	return views, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MessageRepositoryMock) PurgeExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type TemplateRepositoryMock struct {
	mock.Mock
}

func (m *TemplateRepositoryMock) ListKinds(ctx context.Context) ([]models.TemplateKind, error) {
	args := m.Called(ctx)
	var kinds []models.TemplateKind
	if val := args.Get(0); val != nil {
		kinds = val.([]models.TemplateKind)
	}
	return kinds, args.Error(1)
}

func (m *TemplateRepositoryMock) CreateKind(ctx context.Context, name string) (models.TemplateKind, error) {
	args := m.Called(ctx, name)
	var kind models.TemplateKind
	if val := args.Get(0); val != nil {
		kind = val.(models.TemplateKind)
	}
	return kind, args.Error(1)
}

func (m *TemplateRepositoryMock) RenameKind(ctx context.Context, id int, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *TemplateRepositoryMock) DeleteKind(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TemplateRepositoryMock) GetTemplate(ctx context.Context, id int) (models.QuickTemplate, error) {
	args := m.Called(ctx, id)
	var tmpl models.QuickTemplate
	if val := args.Get(0); val != nil {
		tmpl = val.(models.QuickTemplate)
	}
	return tmpl, args.Error(1)
}

func (m *TemplateRepositoryMock) ListTemplates(ctx context.Context) ([]models.QuickTemplate, error) {
	args := m.Called(ctx)
	var templates []models.QuickTemplate
	if val := args.Get(0); val != nil {
		templates = val.([]models.QuickTemplate)
	}
	return templates, args.Error(1)
}

func (m *TemplateRepositoryMock) CreateTemplate(ctx context.Context, kindID int, body string) (models.QuickTemplate, error) {
	args := m.Called(ctx, kindID, body)
	var tmpl models.QuickTemplate
	if val := args.Get(0); val != nil {
		tmpl = val.(models.QuickTemplate)
	}
	return tmpl, args.Error(1)
}

func (m *TemplateRepositoryMock) UpdateTemplate(ctx context.Context, id, kindID int, body string) error {
	args := m.Called(ctx, id, kindID, body)
	return args.Error(0)
}

func (m *TemplateRepositoryMock) DeleteTemplate(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type PushRepositoryMock struct {
	mock.Mock
}

func (m *PushRepositoryMock) Upsert(ctx context.Context, sub models.PushSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *PushRepositoryMock) DeleteByUser(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *PushRepositoryMock) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	args := m.Called(ctx, endpoint)
	return args.Error(0)
}

func (m *PushRepositoryMock) ListByUserIDs(ctx context.Context, userIDs []int) ([]models.PushSubscription, error) {
	args := m.Called(ctx, userIDs)
	var subs []models.PushSubscription
	if val := args.Get(0); val != nil {
		subs = val.([]models.PushSubscription)
	}
	return subs, args.Error(1)
}

type VapidRepositoryMock struct {
	mock.Mock
}

func (m *VapidRepositoryMock) Load(ctx context.Context) (string, string, error) {
	args := m.Called(ctx)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *VapidRepositoryMock) Save(ctx context.Context, publicKey, privateKey string) error {
	args := m.Called(ctx, publicKey, privateKey)
	return args.Error(0)
}

type PushSenderMock struct {
	mock.Mock
}

func (m *PushSenderMock) Send(ctx context.Context, sub models.PushSubscription, payload []byte) (push.Result, error) {
	args := m.Called(ctx, sub, payload)
	var result push.Result
	if val := args.Get(0); val != nil {
		result = val.(push.Result)
	}
	return result, args.Error(1)
}

type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) Send(ctx context.Context, to, subject, htmlBody string) bool {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Bool(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.UnitRepository = (*UnitRepositoryMock)(nil)
var _ repositories.BlockRepository = (*BlockRepositoryMock)(nil)
var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.TemplateRepository = (*TemplateRepositoryMock)(nil)
var _ repositories.PushRepository = (*PushRepositoryMock)(nil)
var _ repositories.VapidRepository = (*VapidRepositoryMock)(nil)
var _ push.Sender = (*PushSenderMock)(nil)
