// File: internal/ragapp/selectors.go
// Description: Selector chains for the document assistant UI. The markup is
// not stable across builds (ids come and go, button labels drift), so every
// logical target carries a priority-ordered fallback list. Order matters:
// the most specific strategy first, the loosest text match last.

package ragapp

import (
	"github.com/Oktaliem/ragproof/api/schemas"
	"github.com/Oktaliem/ragproof/internal/selector"
)

var (
	loginUsername = selector.NewChain("login username",
		schemas.CSS("#username"),
		schemas.Attr("name", "username"),
		schemas.XPath("//input[@type='text' and ancestor::form]"),
	)
	loginPassword = selector.NewChain("login password",
		schemas.CSS("#password"),
		schemas.Attr("name", "password"),
		schemas.XPath("//input[@type='password']"),
	)
	loginSubmit = selector.NewChain("login submit",
		schemas.CSS("#login-btn"),
		schemas.XPath("//form//button[@type='submit']"),
		schemas.Text("Login"),
	)

	documentCounter = selector.NewChain("document counter",
		schemas.CSS("#doc-count"),
		schemas.Attr("data-stat", "documents"),
		schemas.XPath("//*[contains(text(),'Documents:')]"),
	)
	chunkCounter = selector.NewChain("chunk counter",
		schemas.CSS("#chunk-count"),
		schemas.Attr("data-stat", "chunks"),
		schemas.XPath("//*[contains(text(),'Chunks:')]"),
	)

	clearIndexButton = selector.NewChain("clear index button",
		schemas.CSS("#clear-data-btn"),
		schemas.Text("Clear All Data"),
		schemas.Text("Clear Index"),
	)
	loadSampleButton = selector.NewChain("load sample data button",
		schemas.CSS("#load-sample-btn"),
		schemas.Text("Load Sample Data"),
		schemas.Text("Sample Data"),
	)
	uploadInput = selector.NewChain("upload input",
		schemas.CSS("#file-upload"),
		schemas.Attr("type", "file"),
	)
	uploadSubmit = selector.NewChain("upload submit",
		schemas.CSS("#upload-btn"),
		schemas.Text("Upload"),
	)
	statusBanner = selector.NewChain("status banner",
		schemas.CSS("#status-message"),
		schemas.CSS(".toast"),
		schemas.CSS(".alert"),
	)

	modelSelect = selector.NewChain("model selector",
		schemas.CSS("#model-select"),
		schemas.Attr("name", "model"),
		schemas.XPath("//select[option]"),
	)
	questionInput = selector.NewChain("question input",
		schemas.CSS("#question-input"),
		schemas.Attr("name", "question"),
		schemas.XPath("//textarea"),
	)
	askButton = selector.NewChain("ask button",
		schemas.CSS("#ask-btn"),
		schemas.Text("Ask"),
	)
	answerArea = selector.NewChain("answer area",
		schemas.CSS("#answer"),
		schemas.CSS(".answer-content"),
		schemas.Attr("data-role", "answer"),
	)

	logoutButton = selector.NewChain("logout button",
		schemas.CSS("#logout-btn"),
		schemas.Text("Logout"),
	)
)
