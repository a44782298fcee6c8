package site

// pageTemplate is the Go html/template for index.html and 404.html.
const pageTemplate = `<!DOCTYPE html>
{{rootTag .Mode}}
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{if .NotFound}}Page not found | {{end}}{{.Title}}</title>
  <meta name="description" content="{{.Site.Hero.Subtitle}}">
  <link rel="stylesheet" href="/style.css">
  <script>
    (function() {
      var mode = null;
      try { mode = localStorage.getItem("sitekit-theme"); } catch (e) {}
      if (mode !== "light" && mode !== "dark") {
        mode = (window.matchMedia && window.matchMedia("(prefers-color-scheme: dark)").matches) ? "dark" : null;
      }
      if (mode) {
        document.documentElement.setAttribute("data-theme", mode);
        document.documentElement.classList.toggle("dark", mode === "dark");
      }
    })();
  </script>
  <script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>
</head>
<body>
  <header class="site-header">
    <nav class="nav container">
      <a href="#hero" class="logo" data-section="hero">{{.Title}}</a>
      <div class="nav-links">
        {{range .Site.Nav}}<button class="nav-link" data-section="{{.Section}}">{{.Label}}</button>
        {{end}}
      </div>
      <button class="theme-toggle" id="theme-toggle" aria-label="Toggle theme">
        <svg class="sun-icon" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
          <circle cx="12" cy="12" r="5"/><line x1="12" y1="1" x2="12" y2="3"/><line x1="12" y1="21" x2="12" y2="23"/><line x1="4.22" y1="4.22" x2="5.64" y2="5.64"/><line x1="18.36" y1="18.36" x2="19.78" y2="19.78"/><line x1="1" y1="12" x2="3" y2="12"/><line x1="21" y1="12" x2="23" y2="12"/><line x1="4.22" y1="19.78" x2="5.64" y2="18.36"/><line x1="18.36" y1="5.64" x2="19.78" y2="4.22"/>
        </svg>
        <svg class="moon-icon" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
          <path d="M21 12.79A9 9 0 1 1 11.21 3 7 7 0 0 0 21 12.79z"/>
        </svg>
      </button>
    </nav>
  </header>

  <main>
    <section id="hero" class="hero">
      <div class="container reveal">
        {{if .NotFound}}
        <p class="eyebrow">404</p>
        <h1 class="hero-title">Page not found</h1>
        <p class="hero-subtitle">The page you were looking for does not exist.</p>
        <a class="cta" href="/">Back to home</a>
        {{else}}
        <h1 class="hero-title">{{.Site.Hero.Title}}</h1>
        <p class="hero-subtitle">{{.Site.Hero.Subtitle}}</p>
        {{if .Site.Hero.CTAText}}<a class="cta" href="{{.Site.Hero.CTALink}}">{{.Site.Hero.CTAText}}</a>{{end}}
        {{end}}
      </div>
    </section>
    {{if not .NotFound}}

    {{if .Steps}}
    <section id="quick-start" class="section alt">
      <div class="container">
        <h2 class="section-title reveal">Quick Start</h2>
        <ol class="steps">
          {{range .Steps}}
          <li class="step reveal" id="step-{{.ID}}">
            <span class="step-number">{{.Number}}</span>
            <div class="step-body">
              <h3>{{.Title}}</h3>
              <p>{{.Description}}</p>
              {{if .Command}}<pre class="step-command"><code>{{.Command}}</code></pre>{{end}}
            </div>
          </li>
          {{end}}
        </ol>
      </div>
    </section>
    {{end}}

    {{if .Features}}
    <section id="features" class="section">
      <div class="container">
        <h2 class="section-title reveal">Features</h2>
        <div class="feature-grid">
          {{range .Features}}
          <article class="feature-card reveal" id="feature-{{.ID}}">
            <div class="feature-icon" aria-hidden="true">{{.Icon}}</div>
            <h3>{{.Title}}</h3>
            <p>{{.DescriptionHTML}}</p>
          </article>
          {{end}}
        </div>
      </div>
    </section>
    {{end}}

    {{if .Examples}}
    <section id="code-examples" class="section alt">
      <div class="container">
        <h2 class="section-title reveal">Code Examples</h2>
        <p class="section-lead reveal">Explore practical examples to get started</p>
        <div class="tabs" role="tablist" aria-label="Code examples">
          {{range .Examples}}<button class="tab{{if .Active}} active{{end}}" role="tab" data-tab="{{.ID}}" aria-selected="{{if .Active}}true{{else}}false{{end}}">{{.Title}}</button>
          {{end}}
        </div>
        {{range .Examples}}
        <div class="tab-panel" role="tabpanel" data-panel="{{.ID}}"{{if not .Active}} hidden{{end}}>
          <p class="example-description">{{.DescriptionHTML}}</p>
          <div class="code-block">
            <div class="code-header"><span class="code-lang">{{.Language}}</span><button class="copy-button" data-copy="{{.ID}}">Copy</button></div>
            {{.CodeHTML}}
            <textarea class="code-source" id="source-{{.ID}}" hidden readonly>{{.Code}}</textarea>
          </div>
        </div>
        {{end}}
      </div>
    </section>
    {{end}}

    {{if .Site.Architecture.Nodes}}
    <section id="architecture" class="section">
      <div class="container">
        <h2 class="section-title reveal">Architecture</h2>
        <div class="diagram reveal">
          <div class="mermaid" data-source="{{.Diagram}}">{{.Diagram}}</div>
        </div>
        <ul class="legend reveal">
          <li><span class="swatch deployment"></span>CI/CD Pipeline</li>
          <li><span class="swatch storage"></span>Storage</li>
          <li><span class="swatch cdn"></span>Content Delivery</li>
          <li><span class="swatch client"></span>Client</li>
        </ul>
      </div>
    </section>
    {{end}}
    {{end}}
  </main>

  <footer class="site-footer">
    <div class="container">
      <p>{{.Site.Footer.Text}}</p>
      {{if .Site.Footer.Links}}<ul class="footer-links">
        {{range .Site.Footer.Links}}<li><a href="{{.URL}}">{{.Label}}</a></li>
        {{end}}
      </ul>{{end}}
    </div>
  </footer>
  <script src="/script.js"></script>
</body>
</html>`

// cssContent is the full CSS for the landing page.
const cssContent = `/* ============ CSS Variables ============ */
:root {
  --bg: #ffffff;
  --bg-alt: #f8fafc;
  --bg-card: #ffffff;
  --text: #0f172a;
  --text-secondary: #475569;
  --text-muted: #94a3b8;
  --border: #e2e8f0;
  --accent: #0ea5e9;
  --accent-2: #8b5cf6;
  --code-bg: #f1f5f9;
  --shadow: 0 1px 3px rgba(0,0,0,0.08);
  --shadow-lg: 0 10px 25px rgba(0,0,0,0.08);
  --max-width: 1100px;
}

[data-theme="dark"] {
  --bg: #0f172a;
  --bg-alt: #1e293b;
  --bg-card: #111827;
  --text: #f1f5f9;
  --text-secondary: #cbd5e1;
  --text-muted: #64748b;
  --border: #334155;
  --accent: #38bdf8;
  --accent-2: #a78bfa;
  --code-bg: #1e293b;
  --shadow: 0 1px 3px rgba(0,0,0,0.3);
  --shadow-lg: 0 10px 25px rgba(0,0,0,0.4);
}

/* ============ Base ============ */
* { box-sizing: border-box; margin: 0; padding: 0; }
html { scroll-behavior: smooth; }
body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
  background: var(--bg);
  color: var(--text);
  line-height: 1.6;
  transition: background-color 0.2s, color 0.2s;
}
a { color: var(--accent); text-decoration: none; }
code, pre { font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace; }
.container { max-width: var(--max-width); margin: 0 auto; padding: 0 1rem; }

/* ============ Header ============ */
.site-header {
  position: sticky;
  top: 0;
  z-index: 50;
  background: var(--bg);
  border-bottom: 1px solid var(--border);
  box-shadow: var(--shadow);
}
.nav { display: flex; align-items: center; justify-content: space-between; padding-top: 1rem; padding-bottom: 1rem; }
.logo {
  font-size: 1.5rem;
  font-weight: 700;
  background: linear-gradient(90deg, var(--accent), var(--accent-2));
  -webkit-background-clip: text;
  background-clip: text;
  color: transparent;
}
.nav-links { display: flex; gap: 2rem; }
.nav-link {
  background: none;
  border: none;
  color: var(--text-secondary);
  font-size: 1rem;
  font-weight: 500;
  cursor: pointer;
}
.nav-link:hover { color: var(--accent); }
@media (max-width: 768px) { .nav-links { display: none; } }

.theme-toggle {
  background: var(--bg-alt);
  border: 1px solid var(--border);
  border-radius: 8px;
  padding: 0.5rem;
  color: var(--text);
  cursor: pointer;
  display: flex;
}
.theme-toggle:hover { border-color: var(--accent); }
[data-theme="dark"] .sun-icon { display: inline; }
[data-theme="dark"] .moon-icon { display: none; }
[data-theme="light"] .sun-icon { display: none; }
[data-theme="light"] .moon-icon { display: inline; }

/* ============ Hero ============ */
.hero { padding: 7rem 0 6rem; text-align: center; }
.eyebrow { color: var(--accent); font-weight: 700; letter-spacing: 0.1em; }
.hero-title {
  font-size: clamp(2.25rem, 5vw, 3.75rem);
  font-weight: 800;
  line-height: 1.1;
  margin-bottom: 1.25rem;
  background: linear-gradient(90deg, var(--accent), var(--accent-2));
  -webkit-background-clip: text;
  background-clip: text;
  color: transparent;
}
.hero-subtitle { font-size: 1.25rem; color: var(--text-secondary); margin-bottom: 2rem; }
.cta {
  display: inline-block;
  padding: 0.875rem 2rem;
  border-radius: 9999px;
  background: linear-gradient(90deg, var(--accent), var(--accent-2));
  color: #fff;
  font-weight: 600;
  box-shadow: var(--shadow-lg);
  transition: transform 0.15s;
}
.cta:hover { transform: translateY(-2px); }

/* ============ Sections ============ */
.section { padding: 5rem 0; }
.section.alt { background: var(--bg-alt); }
.section-title { font-size: 2.25rem; font-weight: 700; text-align: center; margin-bottom: 1rem; }
.section-lead { text-align: center; color: var(--text-secondary); margin-bottom: 2.5rem; }

/* ============ Quick start ============ */
.steps { list-style: none; display: grid; gap: 1.5rem; margin-top: 2.5rem; }
.step {
  display: flex;
  gap: 1.25rem;
  background: var(--bg-card);
  border: 1px solid var(--border);
  border-radius: 12px;
  padding: 1.5rem;
  box-shadow: var(--shadow);
}
.step-number {
  flex: 0 0 2.5rem;
  height: 2.5rem;
  border-radius: 9999px;
  background: var(--accent);
  color: #fff;
  font-weight: 700;
  display: flex;
  align-items: center;
  justify-content: center;
}
.step-body h3 { margin-bottom: 0.25rem; }
.step-body p { color: var(--text-secondary); }
.step-command { margin-top: 0.75rem; background: var(--code-bg); border-radius: 8px; padding: 0.75rem 1rem; overflow-x: auto; }

/* ============ Features ============ */
.feature-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(240px, 1fr)); gap: 1.5rem; margin-top: 2.5rem; }
.feature-card {
  background: var(--bg-card);
  border: 1px solid var(--border);
  border-radius: 12px;
  padding: 1.5rem;
  box-shadow: var(--shadow);
  transition: transform 0.15s, box-shadow 0.15s;
}
.feature-card:hover { transform: translateY(-4px); box-shadow: var(--shadow-lg); }
.feature-icon { font-size: 2rem; margin-bottom: 0.75rem; }
.feature-card h3 { margin-bottom: 0.5rem; }
.feature-card p { color: var(--text-secondary); font-size: 0.95rem; }

/* ============ Code examples ============ */
.tabs { display: flex; gap: 0.5rem; overflow-x: auto; border-bottom: 1px solid var(--border); margin-bottom: 1.5rem; }
.tab {
  white-space: nowrap;
  background: none;
  border: none;
  border-bottom: 2px solid transparent;
  padding: 0.75rem 1rem;
  font-size: 0.9rem;
  font-weight: 500;
  color: var(--text-muted);
  cursor: pointer;
}
.tab:hover { color: var(--text); }
.tab.active { color: var(--accent); border-bottom-color: var(--accent); }
.example-description {
  background: var(--bg-card);
  border-radius: 8px;
  padding: 1rem;
  margin-bottom: 1rem;
  box-shadow: var(--shadow);
}
.code-block { border: 1px solid var(--border); border-radius: 12px; overflow: hidden; }
.code-header { display: flex; justify-content: space-between; align-items: center; padding: 0.5rem 1rem; background: var(--code-bg); border-bottom: 1px solid var(--border); }
.code-lang { font-size: 0.8rem; text-transform: uppercase; color: var(--text-muted); }
.copy-button { background: none; border: 1px solid var(--border); border-radius: 6px; padding: 0.25rem 0.75rem; color: var(--text-secondary); cursor: pointer; }
.code-block pre { margin: 0; padding: 1rem; overflow-x: auto; font-size: 0.875rem; }

/* ============ Architecture ============ */
.diagram { background: var(--bg-card); border-radius: 12px; box-shadow: var(--shadow-lg); padding: 2rem; overflow-x: auto; margin-top: 2rem; text-align: center; }
.legend { list-style: none; display: flex; flex-wrap: wrap; gap: 1.5rem; justify-content: center; margin-top: 1.5rem; color: var(--text-secondary); font-size: 0.9rem; }
.legend li { display: flex; align-items: center; gap: 0.5rem; }
.swatch { width: 1rem; height: 1rem; border-radius: 4px; display: inline-block; }
.swatch.client { background: #3b82f6; }
.swatch.cdn { background: #a855f7; }
.swatch.storage { background: #22c55e; }
.swatch.deployment { background: #f97316; }

/* ============ Footer ============ */
.site-footer { border-top: 1px solid var(--border); padding: 2rem 0; text-align: center; color: var(--text-muted); }
.footer-links { list-style: none; display: flex; gap: 1rem; justify-content: center; margin-top: 0.5rem; }

/* ============ Scroll animations ============ */
.reveal { opacity: 0; transform: translateY(20px); transition: opacity 0.6s ease-out, transform 0.6s ease-out; }
.reveal.visible { opacity: 1; transform: none; }
@media (prefers-reduced-motion: reduce) {
  .reveal { opacity: 1; transform: none; transition: none; }
  html { scroll-behavior: auto; }
}
`

// jsContent is the JavaScript for theme, navigation, tabs, and animations.
const jsContent = `(function() {
  "use strict";

  var html = document.documentElement;
  var STORAGE_KEY = "sitekit-theme";

  // ===== Theme =====
  function getStoredTheme() {
    try { return localStorage.getItem(STORAGE_KEY); } catch (e) { return null; }
  }

  function systemTheme() {
    if (window.matchMedia && window.matchMedia("(prefers-color-scheme: dark)").matches) {
      return "dark";
    }
    return null;
  }

  function applyTheme(theme) {
    html.setAttribute("data-theme", theme);
    html.classList.toggle("dark", theme === "dark");
    renderDiagrams(theme);
    document.dispatchEvent(new CustomEvent("sitekit:theme", { detail: { mode: theme } }));
  }

  function setTheme(theme) {
    applyTheme(theme);
    // Without storage the choice lasts until reload.
    try { localStorage.setItem(STORAGE_KEY, theme); } catch (e) {}
  }

  function initialTheme() {
    var stored = getStoredTheme();
    if (stored === "light" || stored === "dark") return stored;
    return systemTheme() || "light";
  }

  function renderDiagrams(theme) {
    if (typeof mermaid === "undefined") return;
    mermaid.initialize({ startOnLoad: false, theme: theme === "dark" ? "dark" : "default", securityLevel: "strict" });
    document.querySelectorAll(".mermaid").forEach(function(el, idx) {
      var src = el.getAttribute("data-source");
      if (!src) return;
      mermaid.render("mermaid-" + theme + "-" + idx, src).then(function(result) {
        el.innerHTML = result.svg;
      });
    });
  }

  window.sitekit = {
    currentTheme: function() { return html.getAttribute("data-theme") || "light"; },
    setTheme: setTheme,
    applyTheme: applyTheme
  };

  applyTheme(initialTheme());

  var themeToggle = document.getElementById("theme-toggle");
  if (themeToggle) {
    themeToggle.addEventListener("click", function() {
      setTheme(window.sitekit.currentTheme() === "dark" ? "light" : "dark");
    });
  }

  // ===== Navigation =====
  function scrollToSection(id) {
    var el = document.getElementById(id);
    if (el) el.scrollIntoView({ behavior: "smooth" });
  }

  document.querySelectorAll("[data-section]").forEach(function(btn) {
    btn.addEventListener("click", function(e) {
      var id = btn.getAttribute("data-section");
      if (!document.getElementById(id)) return;
      e.preventDefault();
      scrollToSection(id);
    });
  });

  // ===== Code example tabs =====
  var tabs = document.querySelectorAll("[data-tab]");
  tabs.forEach(function(tab) {
    tab.addEventListener("click", function() {
      var id = tab.getAttribute("data-tab");
      tabs.forEach(function(t) {
        var active = t === tab;
        t.classList.toggle("active", active);
        t.setAttribute("aria-selected", active ? "true" : "false");
      });
      document.querySelectorAll("[data-panel]").forEach(function(panel) {
        panel.hidden = panel.getAttribute("data-panel") !== id;
      });
    });
  });

  document.querySelectorAll("[data-copy]").forEach(function(btn) {
    btn.addEventListener("click", function() {
      var src = document.getElementById("source-" + btn.getAttribute("data-copy"));
      if (!src || !navigator.clipboard) return;
      navigator.clipboard.writeText(src.value).then(function() {
        btn.textContent = "Copied";
        setTimeout(function() { btn.textContent = "Copy"; }, 1500);
      });
    });
  });

  // ===== Scroll animations =====
  var revealed = document.querySelectorAll(".reveal");
  if ("IntersectionObserver" in window) {
    var observer = new IntersectionObserver(function(entries) {
      entries.forEach(function(entry) {
        if (!entry.isIntersecting) return;
        entry.target.classList.add("visible");
        observer.unobserve(entry.target);
      });
    }, { threshold: 0.1 });
    revealed.forEach(function(el) { observer.observe(el); });
  } else {
    revealed.forEach(function(el) { el.classList.add("visible"); });
  }
})();
`

// liveReloadSnippet is injected into HTML served by the preview server. It
// mirrors the server-side theme preference and reloads after rebuilds.
const liveReloadSnippet = `<script>
(function() {
  "use strict";
  var remote = false;
  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onmessage = function(ev) {
      var msg;
      try { msg = JSON.parse(ev.data); } catch (e) { return; }
      if (msg.type === "reload") {
        location.reload();
      } else if (msg.type === "theme" && window.sitekit && window.sitekit.currentTheme() !== msg.mode) {
        remote = true;
        window.sitekit.setTheme(msg.mode);
        remote = false;
      }
    };
    ws.onclose = function() { setTimeout(connect, 1000); };
  }
  document.addEventListener("sitekit:theme", function(ev) {
    if (remote) return;
    fetch("/api/theme", {
      method: "PUT",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ mode: ev.detail.mode })
    }).catch(function() {});
  });
  connect();
})();
</script>
`
