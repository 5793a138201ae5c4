package render

const explanationTemplate = `<div class="card">
  <h2><b>{{ .Name }}</b> 단위 설명</h2>
  <div class="card-body">
    <b>기호:</b> {{ .Symbol }}<br>
    <b>{{ .DetailLabel }}:</b> {{ .Detail }}<br><br>
    <div class="desc">{{ .Desc }}</div>
  </div>
</div>`

const prefixResultTemplate = `<div class="card">
  <b>{{ .From }}</b> → <b>{{ .To }}</b> 변환 결과<br><br>
  <div class="result-value">결과: <b>{{ .Result }}</b></div>
  <div class="formula" style="white-space: pre-line">{{ .Formula }}</div>
</div>`

const unitResultTemplate = `<div class="card">
  <b>{{ .From }}</b> → <b>{{ .To }}</b><br><br>
  <div class="result-body">
    결과: {{ .Result }}<br>
    계산 과정: <span class="formula" style="white-space: pre-line">{{ .Formula }}</span>
  </div>
</div>`

const messageTemplate = `<div class="message">{{ . }}</div>`
