package view

import (
	"net/url"

	cmp "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	g "maragu.dev/gomponents/html"

	"github.com/nfrund/pairchat/internal/view/dto"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// ChatSocketPath is the WebSocket path of a problem's chat.
func ChatSocketPath(problemID string) string {
	return "/ws/chat/" + url.PathEscape(problemID)
}

// SummaryPath is the fragment endpoint the lobby polls for its live panel.
func SummaryPath(problemID string) string {
	return "/problems/" + url.PathEscape(problemID) + "/summary"
}

// LobbyPage is a minimal chat client for one problem. The page script opens the
// chat socket, prints chat lines and notices, and keeps the online counter current.
func LobbyPage(summary dto.ProblemSummary) cmp.Node {
	return g.Doctype(
		g.HTML(
			g.Lang("en"),
			g.Head(
				g.Meta(g.Charset("utf-8")),
				g.Meta(g.Name("viewport"), g.Content("width=device-width, initial-scale=1")),
				g.TitleEl(cmp.Textf("Pair chat: %s", summary.ProblemID)),
				g.Script(g.Src(htmxSrc)),
			),
			g.Body(
				g.Main(
					g.ID("lobby"),
					cmp.Attr("data-ws-path", ChatSocketPath(summary.ProblemID)),
					g.H1(cmp.Textf("Problem %s", summary.ProblemID)),
					SummaryPanel(summary),
					g.Ul(g.ID("chat-messages")),
					g.Form(
						g.ID("chat-form"),
						g.Input(g.Type("text"), g.Name("message"), g.Placeholder("Say something"), g.Required()),
						g.Button(g.Type("submit"), cmp.Text("Send")),
					),
				),
				g.Script(cmp.Raw(lobbyScript)),
			),
		),
	)
}

// SummaryPanel renders the live counters and re-polls itself every few seconds.
func SummaryPanel(summary dto.ProblemSummary) cmp.Node {
	return g.Section(
		g.ID("summary"),
		hx.Get(SummaryPath(summary.ProblemID)),
		hx.Trigger("every 5s"),
		hx.Swap("outerHTML"),
		g.P(
			cmp.Text("Online: "),
			g.Span(g.ID("online-count"), cmp.Textf("%d", summary.Online)),
		),
		g.P(cmp.Textf("Sessions so far: %d, pairs made: %d", summary.Connections, summary.Pairings)),
	)
}

const lobbyScript = `
(function () {
  var lobby = document.getElementById("lobby");
  var list = document.getElementById("chat-messages");
  var form = document.getElementById("chat-form");
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var socket = new WebSocket(scheme + location.host + lobby.dataset.wsPath);

  socket.onmessage = function (event) {
    var data = JSON.parse(event.data);
    if (data.type === "online_users") {
      var counter = document.getElementById("online-count");
      if (counter) counter.textContent = data.count;
      return;
    }
    var item = document.createElement("li");
    item.textContent = data.username + ": " + data.message;
    list.appendChild(item);
  };

  form.addEventListener("submit", function (event) {
    event.preventDefault();
    var input = form.elements.message;
    socket.send(JSON.stringify({ message: input.value }));
    input.value = "";
  });
})();
`
