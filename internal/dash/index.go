package dash

import "net/http"

// The landing page polls the frame and history and posts slider input back.
// Layout stays intentionally plain; everything interesting happens in the
// API handlers.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<title>simviz dashboard</title>
<style>
body { font-family: sans-serif; margin: 20px; }
.panel { display: inline-block; vertical-align: top; margin: 10px; padding: 10px; background: #f8f9fa; }
label { display: block; margin-top: 12px; }
</style>
</head>
<body>
<h1>Tank Simulation Dashboard</h1>
<div>
  <div class="panel">
    <h3>Tank</h3>
    <img id="frame" width="400" height="300" style="border:1px solid black">
  </div>
  <div class="panel">
    <h3>Status</h3>
    <pre id="status"></pre>
    <label>Speed <input id="factor" type="range" min="0.1" max="5" step="0.1" value="1"></label>
    <label>Inflow <input id="inflow" type="range" min="0" max="100" step="1" value="50"></label>
    <label>Outflow <input id="outflow" type="range" min="0" max="100" step="1" value="30"></label>
    <p><a href="/chart">volume history chart</a> · <a href="/metrics">metrics</a></p>
  </div>
</div>
<script>
function send(name, value) {
  fetch('/api/control?' + name + '=' + value, {method: 'POST'});
}
['factor', 'inflow', 'outflow'].forEach(function (id) {
  document.getElementById(id).addEventListener('input', function (e) {
    send(id, e.target.value);
  });
});
setInterval(function () {
  document.getElementById('frame').src = '/api/frame?t=' + Date.now();
  fetch('/api/snapshot').then(r => r.json()).then(function (s) {
    document.getElementById('status').textContent =
      'time    ' + s.time.toFixed(1) + ' s\n' +
      'volume  ' + s.volume.toFixed(1) + ' L\n' +
      'factor  ' + s.controls.factor.toFixed(1) + 'x\n' +
      s.message + (s.running ? '' : '\n[simulation stopped]');
  });
}, 100);
</script>
</body>
</html>
`

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}
