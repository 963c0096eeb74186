package conversation_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/Ilan9903/Juris-IA/internal"
	"github.com/Ilan9903/Juris-IA/internal/assistant"
	"github.com/Ilan9903/Juris-IA/internal/conversation"
	conversationPostgres "github.com/Ilan9903/Juris-IA/internal/conversation/postgres"
	conversationDatamodel "github.com/Ilan9903/Juris-IA/internal/core/datamodel/conversation"
	"github.com/Ilan9903/Juris-IA/internal/prompttemplate"
	"github.com/Ilan9903/Juris-IA/internal/testutil"
)

var _ = Describe("Conversation Service", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		completer *stubCompleter
		prompts   *stubPrompts
		service   *conversation.Service
		aliceID   int64
		bobID     int64
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = testutil.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		alice, err := testutil.SeedUser(db, "Alice", "alice@example.com", "user")
		Expect(err).NotTo(HaveOccurred())
		bob, err := testutil.SeedUser(db, "Bob", "bob@example.com", "user")
		Expect(err).NotTo(HaveOccurred())
		aliceID, bobID = alice.ID, bob.ID

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		completer = &stubCompleter{title: "Définition du contrat", reply: "Un contrat est un accord de volontés."}
		prompts = &stubPrompts{}
		service = conversation.NewService(
			conversationPostgres.NewConversationRepository(db),
			assistant.NewClient(completer, "", slogger),
			prompts,
			slogger,
		)
	})

	Describe("Create and List", func() {
		It("creates conversations with the placeholder title", func() {
			conv, err := service.Create(ctx, aliceID)
			Expect(err).NotTo(HaveOccurred())
			Expect(conv.Title).To(Equal(conversation.DefaultTitle))
			Expect(conv.ID).To(HaveLen(36))
		})

		It("lists only owned conversations, newest first", func() {
			base := time.Now().Add(-time.Hour)
			repo := conversationPostgres.NewConversationRepository(db)
			for i, id := range []string{"11111111-1111-1111-1111-111111111111", "22222222-2222-2222-2222-222222222222"} {
				Expect(repo.Create(ctx, &conversationDatamodel.Conversation{
					ID: id, OwnerID: aliceID, Title: id[:1], CreatedAt: base.Add(time.Duration(i) * time.Minute),
				})).To(Succeed())
			}
			_, err := service.Create(ctx, bobID)
			Expect(err).NotTo(HaveOccurred())

			list, err := service.List(ctx, aliceID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].Title).To(Equal("2"))
			Expect(list[1].Title).To(Equal("1"))
		})

		It("serves the owner listing from the owner/created_at index", func() {
			Expect(db.Migrator().HasIndex(&conversationDatamodel.Conversation{}, "idx_conversations_owner_created")).To(BeTrue())

			var plan []struct {
				ID      int
				Parent  int
				Notused int
				Detail  string
			}
			Expect(db.Raw("EXPLAIN QUERY PLAN SELECT * FROM conversations WHERE owner_id = ? ORDER BY created_at DESC", aliceID).
				Scan(&plan).Error).To(Succeed())

			details := make([]string, 0, len(plan))
			for _, step := range plan {
				details = append(details, step.Detail)
			}
			Expect(details).To(ContainElement(ContainSubstring("idx_conversations_owner_created")))
			Expect(details).NotTo(ContainElement(ContainSubstring("TEMP B-TREE")))
		})
	})

	Describe("SendMessage", func() {
		var convID string

		BeforeEach(func() {
			conv, err := service.Create(ctx, aliceID)
			Expect(err).NotTo(HaveOccurred())
			convID = conv.ID
		})

		It("titles the conversation on the first message and pairs the reply", func() {
			result, err := service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "What is a contract?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.UpdatedTitle).To(Equal("Définition du contrat"))
			Expect(result.Messages).To(HaveLen(2))
			Expect(result.Messages[0].Role).To(Equal(assistant.RoleUser))
			Expect(result.Messages[1].Role).To(Equal(assistant.RoleAssistant))
			Expect(result.Messages[1].Content).To(Equal("Un contrat est un accord de volontés."))

			conv, _, err := service.Get(ctx, aliceID, convID)
			Expect(err).NotTo(HaveOccurred())
			Expect(conv.Title).To(Equal("Définition du contrat"))
		})

		It("does not retitle on later messages", func() {
			_, err := service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "first"})
			Expect(err).NotTo(HaveOccurred())

			result, err := service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "second"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.UpdatedTitle).To(BeEmpty())
			Expect(result.Messages).To(HaveLen(4))
		})

		It("assembles system prompt, history and the new message in order", func() {
			prompts.prompt = &prompttemplate.PromptTemplate{Name: prompttemplate.AssistantPromptName, Content: "Tu es un juriste."}
			_, err := service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "first"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "second"})
			Expect(err).NotTo(HaveOccurred())

			req := completer.lastReplyRequest()
			roles := make([]string, 0, len(req.Messages))
			contents := make([]string, 0, len(req.Messages))
			for _, m := range req.Messages {
				roles = append(roles, m.Role)
				contents = append(contents, m.Content)
			}
			Expect(roles).To(Equal([]string{"system", "user", "assistant", "user"}))
			Expect(contents[0]).To(Equal("Tu es un juriste."))
			Expect(contents[3]).To(Equal("second"))
		})

		It("continues without a system prompt when the lookup fails", func() {
			prompts.err = errors.New("db down")
			result, err := service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Messages).To(HaveLen(2))
			Expect(completer.lastReplyRequest().Messages[0].Role).To(Equal("user"))
		})

		It("still titles and answers when the provider is unreachable", func() {
			completer.err = errProviderDown
			result, err := service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "Quelle est la durée légale du préavis de démission ?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.UpdatedTitle).To(Equal("Quelle est la durée légale du préavis de..."))
			Expect(result.Messages).To(HaveLen(2))
			Expect(result.Messages[1].Content).To(Equal(assistant.FallbackReply))
		})

		It("pairs empty completions with the fallback reply", func() {
			completer.reply = ""
			result, err := service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "hello"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Messages[1].Content).To(Equal(assistant.FallbackReply))
		})

		It("hides conversations owned by someone else", func() {
			_, err := service.SendMessage(ctx, bobID, convID, conversation.SendMessageDTO{Message: "hello"})
			Expect(err).To(MatchError(internal.ErrConversationNotFound))
		})

		It("rejects empty messages", func() {
			_, err := service.SendMessage(ctx, aliceID, convID, conversation.SendMessageDTO{Message: "  "})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(422))
		})
	})

	Describe("Get", func() {
		It("returns not found for malformed ids", func() {
			_, _, err := service.Get(ctx, aliceID, "not-a-uuid")
			Expect(err).To(MatchError(internal.ErrConversationNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the conversation and its messages", func() {
			conv, err := service.Create(ctx, aliceID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.SendMessage(ctx, aliceID, conv.ID, conversation.SendMessageDTO{Message: "hello"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, aliceID, conv.ID)).To(Succeed())

			var count int64
			Expect(db.Model(&conversationDatamodel.Message{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
			_, _, err = service.Get(ctx, aliceID, conv.ID)
			Expect(err).To(MatchError(internal.ErrConversationNotFound))
		})

		It("succeeds for unknown ids", func() {
			Expect(service.Delete(ctx, aliceID, "33333333-3333-3333-3333-333333333333")).To(Succeed())
			Expect(service.Delete(ctx, aliceID, "garbage")).To(Succeed())
		})

		It("leaves other users' conversations alone", func() {
			conv, err := service.Create(ctx, bobID)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, aliceID, conv.ID)).To(Succeed())

			_, _, err = service.Get(ctx, bobID, conv.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("StartAndSend", func() {
		It("creates the conversation implicitly", func() {
			result, err := service.StartAndSend(ctx, aliceID, conversation.SendMessageDTO{Message: "What is a contract?"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.ConversationID).NotTo(BeEmpty())
			Expect(result.UpdatedTitle).NotTo(BeEmpty())
			Expect(result.Messages).To(HaveLen(2))
		})
	})
})

var _ = Describe("BuildPrompt", func() {
	It("omits the system entry when no prompt is published", func() {
		out := conversation.BuildPrompt("", []conversation.Message{{Role: assistant.RoleAssistant, Content: "hi"}}, "q")
		Expect(out).To(Equal([]assistant.Message{
			{Role: assistant.RoleAssistant, Content: "hi"},
			{Role: assistant.RoleUser, Content: "q"},
		}))
	})
})
