package viewer

import (
	"bytes"
	"text/template"
)

// The generated page has no native change event for the dropdown, so the
// script polls the menu's active index and guards its own chained update
// sequence with updatingFromCode to avoid observing half-applied state.
var navTemplate = template.Must(template.New("nav").Parse(`<script>
var currentHouseholdIndex = 0;
var totalHouseholds = {{.Total}};
var updatingFromCode = false;

document.addEventListener('keydown', function(event) {
    if (event.key === 'ArrowRight' || event.key === 'ArrowDown') {
        nextHousehold();
    } else if (event.key === 'ArrowLeft' || event.key === 'ArrowUp') {
        previousHousehold();
    }
});

function nextHousehold() {
    if (currentHouseholdIndex < totalHouseholds - 1) {
        selectHousehold(currentHouseholdIndex + 1);
    }
}

function previousHousehold() {
    if (currentHouseholdIndex > 0) {
        selectHousehold(currentHouseholdIndex - 1);
    }
}

function selectHousehold(index) {
    if (totalHouseholds === 0 || index < 0 || index >= totalHouseholds) return;

    currentHouseholdIndex = index;
    updatingFromCode = true;

    var graphDiv = document.querySelector('.plotly-graph-div');
    if (graphDiv && graphDiv.layout && graphDiv.layout.updatemenus) {
        var button = graphDiv.layout.updatemenus[0].buttons[index];
        if (button && button.args) {
            Plotly.relayout(graphDiv, {
                'updatemenus[0].active': index
            }).then(function() {
                return Plotly.relayout(graphDiv, button.args[1]);
            }).then(function() {
                return Plotly.restyle(graphDiv, button.args[0]);
            }).then(function() {
                updatingFromCode = false;
                updateNavigationButtons();
            });
        }
    }
}

function updateNavigationButtons() {
    var prevBtn = document.getElementById('prevBtn');
    var nextBtn = document.getElementById('nextBtn');
    if (prevBtn) prevBtn.disabled = (currentHouseholdIndex === 0);
    if (nextBtn) nextBtn.disabled = (currentHouseholdIndex >= totalHouseholds - 1);

    var counterSpan = document.getElementById('hhCounter');
    if (counterSpan) {
        if (totalHouseholds === 0) {
            counterSpan.textContent = '0 / 0';
        } else {
            counterSpan.textContent = (currentHouseholdIndex + 1) + ' / ' + totalHouseholds;
        }
    }
}

var lastKnownActive = 0;

function pollDropdownState() {
    if (updatingFromCode) {
        return;
    }

    var graphDiv = document.querySelector('.plotly-graph-div');
    if (graphDiv && graphDiv.layout && graphDiv.layout.updatemenus && graphDiv.layout.updatemenus[0]) {
        var active = graphDiv.layout.updatemenus[0].active;
        if (typeof active === 'number' && active !== lastKnownActive) {
            lastKnownActive = active;
            if (active !== currentHouseholdIndex) {
                currentHouseholdIndex = active;
                updateNavigationButtons();
            }
        }
    }
}

window.addEventListener('load', function() {
    var graphDiv = document.querySelector('.plotly-graph-div');
    if (!graphDiv) return;

    var navDiv = document.createElement('div');
    navDiv.style.cssText = 'position: absolute; top: 10px; right: 10px; z-index: 1000; background: white; padding: 10px; border: 1px solid #ccc; border-radius: 5px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);';
    navDiv.innerHTML = '<div style="display: flex; align-items: center; gap: 10px;">' +
        '<button id="prevBtn" onclick="previousHousehold()" style="padding: 5px 15px; cursor: pointer; font-size: 14px;">&#8592; Previous</button>' +
        '<span id="hhCounter" style="font-size: 14px; min-width: 60px; text-align: center;"></span>' +
        '<button id="nextBtn" onclick="nextHousehold()" style="padding: 5px 15px; cursor: pointer; font-size: 14px;">Next &#8594;</button>' +
        '</div>' +
        '<div style="font-size: 11px; color: #666; margin-top: 5px; text-align: center;">Use &#8592; &#8594; arrow keys</div>';
    graphDiv.parentNode.insertBefore(navDiv, graphDiv);
    updateNavigationButtons();

    setInterval(pollDropdownState, 100);
});
</script>`))

// NavScript renders the navigation/synchronization script for a page with
// the given number of qualifying households.
func NavScript(total int) string {
	var buf bytes.Buffer
	if err := navTemplate.Execute(&buf, struct{ Total int }{Total: total}); err != nil {
		// Template and data are both static; a failure here is a bug.
		panic(err)
	}
	return buf.String()
}
