package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"todoapi/internal/adapter/database/postgres"
	repository "todoapi/internal/adapter/database/postgres/repository"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type TodoRepositoryTestSuite struct {
	suite.Suite
	TodoRepo    port.TodoRepository
	pgContainer testcontainers.Container
	DB          *postgres.DB
}

func (s *TodoRepositoryTestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("postgres container tests are skipped in short mode")
	}

	ctx := context.Background()

	req := testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "testdb",
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, req)

	if err != nil {
		s.T().Skipf("docker is not available: %v", err)
	}

	s.pgContainer = pgContainer

	host, _ := pgContainer.Host(ctx)
	port, _ := pgContainer.MappedPort(ctx, "5432")

	url := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := postgres.NewDB(ctx, postgres.Config{URL: url, RunMigrations: true})
	s.Require().NoError(err)

	s.DB = db
	s.TodoRepo = repository.NewTodoRepository(s.DB)
}

func (s *TodoRepositoryTestSuite) TearDownSuite() {
	if s.DB != nil {
		s.DB.Close()
	}

	if s.pgContainer != nil {
		s.pgContainer.Terminate(context.Background())
	}
}

func (s *TodoRepositoryTestSuite) SetupTest() {
	_, err := s.DB.Exec(context.Background(), "TRUNCATE todos RESTART IDENTITY")
	s.Require().NoError(err)
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) TestRepository_GetAll_Empty() {
	todos, err := s.TodoRepo.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoRepositoryTestSuite) TestRepository_Create_ReturnsGeneratedID() {
	description := "Some description"

	id, err := s.TodoRepo.Create(context.Background(), domain.Todo{
		ID:          77,
		Title:       "My Todo",
		Description: &description,
	})

	Expect(err).To(BeNil())
	Expect(id).To(Equal(int64(1)))

	todo, err := s.TodoRepo.GetByID(context.Background(), id)

	Expect(err).To(BeNil())
	Expect(todo.Title).To(Equal("My Todo"))
	Expect(*todo.Description).To(Equal("Some description"))
	Expect(todo.Done).To(BeFalse())
}

func (s *TodoRepositoryTestSuite) TestRepository_UpdateByID() {
	id, _ := s.TodoRepo.Create(context.Background(), domain.Todo{Title: "Test Todo"})

	affected, err := s.TodoRepo.UpdateByID(context.Background(), id, domain.Todo{Title: "Updated", Done: true})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), affected)

	affected, err = s.TodoRepo.UpdateByID(context.Background(), id+100, domain.Todo{Title: "ghost"})

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), affected)

	todo, _ := s.TodoRepo.GetByID(context.Background(), id)
	Expect(todo.Title).To(Equal("Updated"))
	Expect(todo.Done).To(BeTrue())
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByID() {
	id, _ := s.TodoRepo.Create(context.Background(), domain.Todo{Title: "Test Todo"})

	affected, err := s.TodoRepo.DeleteByID(context.Background(), id)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), affected)

	_, err = s.TodoRepo.GetByID(context.Background(), id)
	Expect(domain.IsNotFound(err)).To(BeTrue())
}
